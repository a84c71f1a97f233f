// Package helpers opens live console sessions for the browser-backed tests.
package helpers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/epinio/epinio-e2e/internal/config"
	"github.com/epinio/epinio-e2e/internal/session"
)

// CaseTimeout bounds a single case against a live console.
const CaseTimeout = 20 * time.Minute

// SkipUnlessConfigured skips t when no console is configured or browser
// tests are turned off.
func SkipUnlessConfigured(t testing.TB) {
	t.Helper()
	if os.Getenv("SKIP_BROWSER") == "true" {
		t.Skip("SKIP_BROWSER is set")
	}
	if os.Getenv(config.EnvPrefix+"_BASE_URL") == "" && os.Getenv("BASE_URL") == "" {
		t.Skip("no Epinio console configured, set EPINIO_E2E_BASE_URL or BASE_URL")
	}
}

// RepoRoot returns the directory holding go.mod.
func RepoRoot(t testing.TB) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above working directory")
		dir = parent
	}
}

// LoadConfig loads the configuration from the repository root and anchors
// relative paths there, so tests behave the same from any package dir.
func LoadConfig(t testing.TB) *config.Config {
	t.Helper()
	root := RepoRoot(t)
	cfg, err := config.Load(root)
	require.NoError(t, err, "failed to load e2e configuration")

	for _, p := range []*string{&cfg.FixturesDir, &cfg.Browser.ArtifactsDir, &cfg.Browser.DownloadsDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(root, *p)
		}
	}
	return cfg
}

// NewSession opens a browser session against the configured console and
// closes it when t finishes.
func NewSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()
	SkipUnlessConfigured(t)

	cfg := LoadConfig(t)
	log := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s, err := session.Open(ctx, cfg, log, opts...)
	require.NoError(t, err, "failed to open browser session")
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close browser: %v", err)
		}
	})
	return s
}

// CaseContext returns a context bounded by CaseTimeout and cancelled with t.
func CaseContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), CaseTimeout)
	t.Cleanup(cancel)
	return ctx
}
