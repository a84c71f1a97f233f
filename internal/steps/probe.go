package steps

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const maxProbeBody = 1 << 20

// HTTPProber fetches routes with retries, accepting the self-signed
// certificates of test clusters.
type HTTPProber struct {
	client *retryablehttp.Client
}

func NewHTTPProber(timeout time.Duration, log *zap.Logger) *HTTPProber {
	if log == nil {
		log = zap.NewNop()
	}
	c := retryablehttp.NewClient()
	c.RetryMax = 5
	c.RetryWaitMin = time.Second
	c.RetryWaitMax = 10 * time.Second
	c.Logger = leveledLogger{log.Named("prober").Sugar()}
	// Hand back the last response once retries run out.
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.HTTPClient.Timeout = timeout
	c.HTTPClient.Transport = &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // test clusters use self-signed certs
	}
	return &HTTPProber{client: c}
}

func (p *HTTPProber) Probe(ctx context.Context, url string) (int, string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return resp.StatusCode, string(body), nil
}

// leveledLogger routes retryablehttp logs to zap.
type leveledLogger struct{ s *zap.SugaredLogger }

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }

var _ RouteProber = (*HTTPProber)(nil)
