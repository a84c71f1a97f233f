package config

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	dialTimeout  = 250 * time.Millisecond
	probeTimeout = 800 * time.Millisecond
)

// ResolveBaseURL keeps BaseURL when it answers and, with autodetect on,
// switches to the first reachable variant (other scheme, localhost).
func (c *Config) ResolveBaseURL(ctx context.Context, log *zap.Logger) string {
	log = log.Named("e2e-config")
	if !c.BaseURLAutodetect {
		log.Info("resolved base url", zap.String("base_url", c.BaseURL))
		return c.BaseURL
	}
	start := time.Now()
	tried := []string{}
	for _, candidate := range candidates(c.BaseURL) {
		tried = append(tried, candidate)
		if reachable(ctx, candidate) {
			if candidate != c.BaseURL {
				log.Info("auto-detect switched base url",
					zap.String("from", c.BaseURL), zap.String("to", candidate),
					zap.Duration("took", time.Since(start)), zap.Strings("tried", tried))
				c.BaseURL = candidate
			}
			return c.BaseURL
		}
	}
	log.Warn("auto-detect kept unreachable base url",
		zap.String("base_url", c.BaseURL), zap.Strings("tried", tried), zap.Duration("took", time.Since(start)))
	return c.BaseURL
}

// candidates lists initial first, then de-duplicated variations.
func candidates(initial string) []string {
	out := []string{initial}
	u, err := url.Parse(initial)
	if err != nil {
		return out
	}
	other := "http"
	if u.Scheme == "http" {
		other = "https"
	}
	swapped := *u
	swapped.Scheme = other
	out = append(out, swapped.String())

	if h := u.Hostname(); h != "localhost" && h != "127.0.0.1" {
		for _, scheme := range []string{u.Scheme, other} {
			local := *u
			local.Scheme = scheme
			local.Host = "localhost"
			if p := u.Port(); p != "" {
				local.Host = net.JoinHostPort("localhost", p)
			}
			out = append(out, local.String())
		}
	}

	seen := map[string]struct{}{}
	uniq := out[:0]
	for _, c := range out {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	return uniq
}

func reachable(ctx context.Context, base string) bool {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	client := &http.Client{
		Timeout: probeTimeout,
		// Test clusters serve self-signed certificates.
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}, //nolint:gosec
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/", nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
