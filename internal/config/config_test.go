package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://localhost", c.BaseURL)
	assert.Equal(t, "playwright", c.Browser.Driver)
	assert.True(t, c.Browser.Headless)
	assert.Equal(t, 30*time.Second, c.Browser.Timeout)
	assert.Equal(t, "downloads", c.Browser.DownloadsDir)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, []string{"applications", "configurations", "namespaces"}, c.Schedule.Suites)
	assert.Equal(t, 2*time.Hour, c.Schedule.Timeout)
	assert.False(t, c.IsRancher())
	assert.Same(t, c, Get())
}

func TestLoadMergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "e2e.yaml", `
base_url: https://epinio.192.168.1.10.sslip.io/
ui: rancher
cluster: c-m-abc
system_domain: 192.168.1.10.sslip.io
browser:
  driver: chromedp
  timeout: 20s
`)
	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://epinio.192.168.1.10.sslip.io", c.BaseURL, "trailing slash trimmed")
	assert.True(t, c.IsRancher())
	assert.Equal(t, "c-m-abc", c.Cluster)
	assert.Equal(t, "chromedp", c.Browser.Driver)
	assert.Equal(t, 20*time.Second, c.Browser.Timeout)
	assert.True(t, c.Browser.Headless, "untouched keys keep their default")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("EPINIO_E2E_BROWSER_TIMEOUT", "45s")
	t.Setenv("EPINIO_E2E_SCHEDULE_CRON", "@hourly")
	t.Setenv("BASE_URL", "https://legacy.example.com")
	t.Setenv("HEADLESS", "false")
	t.Setenv("VIDEOS", "true")

	c, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, c.Browser.Timeout)
	assert.Equal(t, "@hourly", c.Schedule.Cron)
	assert.Equal(t, "https://legacy.example.com", c.BaseURL)
	assert.False(t, c.Browser.Headless)
	assert.True(t, c.Browser.Videos)

	t.Setenv("EPINIO_E2E_BASE_URL", "https://prefixed.example.com")
	c, err = Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://prefixed.example.com", c.BaseURL, "prefixed name wins over legacy")
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("EPINIO_E2E_PASSWORD", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("EPINIO_E2E_USERNAME") })

	dir := t.TempDir()
	writeFile(t, dir, ".env", "EPINIO_E2E_USERNAME=dotenv-user\nEPINIO_E2E_PASSWORD=from-dotenv\n")

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-user", c.Username)
	assert.Equal(t, "from-env", c.Password)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad url", "base_url: not a url\n", "BaseURL"},
		{"unknown ui", "ui: standalone\n", "UI"},
		{"rancher without cluster", "ui: rancher\ncluster: \"\"\n", "Cluster"},
		{"unknown driver", "browser:\n  driver: selenium\n", "Driver"},
		{"tiny timeout", "browser:\n  timeout: 10ms\n", "Timeout"},
		{"bad log format", "log:\n  format: xml\n", "Format"},
		{"bad cron", "schedule:\n  cron: every day\n", "Cron"},
		{"empty suite", "schedule:\n  suites: [applications, \"\"]\n", "Suites[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "e2e.yaml", tt.yaml)
			_, err := LoadFromFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{
		"https://epinio.local:8443",
		"http://epinio.local:8443",
		"https://localhost:8443",
		"http://localhost:8443",
	}, candidates("https://epinio.local:8443"))

	assert.Equal(t, []string{"http://localhost", "https://localhost"}, candidates("http://localhost"))
}

func TestResolveBaseURL(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &Config{BaseURL: "http://127.0.0.1:1"}
	assert.Equal(t, "http://127.0.0.1:1", c.ResolveBaseURL(ctx, log), "autodetect off")

	c = &Config{BaseURL: srv.URL, BaseURLAutodetect: true}
	assert.Equal(t, srv.URL, c.ResolveBaseURL(ctx, log))

	c = &Config{BaseURL: "http://127.0.0.1:1", BaseURLAutodetect: true}
	assert.Equal(t, "http://127.0.0.1:1", c.ResolveBaseURL(ctx, log), "nothing reachable")
}
