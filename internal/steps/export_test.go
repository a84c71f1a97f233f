package steps

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/epinio/epinio-e2e/internal/export"
	"github.com/epinio/epinio-e2e/internal/manifest"
)

const exportedManifest = `name: testapp
configuration:
  instances: 2
  configurations:
  - configuration01
  environment:
    TEST_VAR: epinio-e2e
  routes:
  - custom-route-testapp.192.168.1.10.sslip.io
origin:
  path: sample-app.tar.gz
`

func writeManifest(dir string) (string, error) {
	p := filepath.Join(dir, "testapp-manifest.yaml")
	return p, os.WriteFile(p, []byte(exportedManifest), 0o644)
}

func TestDownloadManifest(t *testing.T) {
	ctx := context.Background()
	e, f := newTestEpinio(t)
	f.OnDownload(writeManifest)

	path, err := e.DownloadManifestChartsAndImages(ctx, "testapp", ExportManifest, manifest.Expectation{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.Settings().DownloadsDir, ManifestFile), path)
	assert.FileExists(t, path)
	assert.Contains(t, f.Ops(), `Click [data-testid="epinio_app-export"] .radio-container:has-text("Manifest")`)

	require.NoError(t, e.FindExtractCheck(ctx, "testapp", ExportManifest, manifest.Expectation{}))

	_, err = e.DownloadManifestChartsAndImages(ctx, "otherapp", ExportManifest, manifest.Expectation{})
	assert.ErrorIs(t, err, manifest.ErrMismatch)
}

func TestDownloadManifestMatchesDeployedApp(t *testing.T) {
	deployed := manifest.Expectation{
		Route:         "custom-route-testapp.192.168.1.10.sslip.io",
		Instances:     2,
		Configuration: "configuration01",
		Vars:          []string{EnvVarName},
	}
	changed := func(edit func(w *manifest.Expectation)) manifest.Expectation {
		w := deployed
		w.Vars = slices.Clone(deployed.Vars)
		edit(&w)
		return w
	}
	tests := []struct {
		name  string
		want  manifest.Expectation
		match bool
	}{
		{"as deployed", deployed, true},
		{"other route", changed(func(w *manifest.Expectation) { w.Route = "custom-route-testapp" }), false},
		{"other instance count", changed(func(w *manifest.Expectation) { w.Instances = 3 }), false},
		{"other configuration", changed(func(w *manifest.Expectation) { w.Configuration = "configuration02" }), false},
		{"missing variable", changed(func(w *manifest.Expectation) { w.Vars = append(w.Vars, "OTHER_VAR") }), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, f := newTestEpinio(t)
			f.OnDownload(writeManifest)

			_, err := e.DownloadManifestChartsAndImages(ctx, "testapp", ExportManifest, tt.want)
			if tt.match {
				require.NoError(t, err)
				assert.NoError(t, e.FindExtractCheck(ctx, "testapp", ExportManifest, tt.want))
				return
			}
			assert.ErrorIs(t, err, manifest.ErrMismatch)
		})
	}
}

func TestCreateAppFromManifest(t *testing.T) {
	ctx := context.Background()
	e, f := newTestEpinio(t)
	_, err := writeManifest(e.Settings().DownloadsDir)
	require.NoError(t, err)
	require.NoError(t, os.Rename(
		filepath.Join(e.Settings().DownloadsDir, "testapp-manifest.yaml"),
		filepath.Join(e.Settings().DownloadsDir, ManifestFile)))

	require.NoError(t, e.CreateApp(ctx, AppSpec{SourceType: SourceArchive, Archive: "sample-app.tar.gz", ManifestName: ManifestFile}))

	ops := f.Ops()
	manifestPath := filepath.Join(e.Settings().DownloadsDir, ManifestFile)
	assert.Contains(t, ops, fmt.Sprintf(`SetFiles [data-testid="epinio_app-source_manifest"] input[type="file"] %q`, manifestPath))
	assert.Equal(t, `WaitVisible tbody > tr.main-row:has-text("testapp")`, ops[len(ops)-1])
	for _, op := range ops {
		assert.NotContains(t, op, `.labeled-input:has-text("Name")`, "name comes from the manifest")
	}
}

func TestCreateAppFromMissingManifest(t *testing.T) {
	e, f := newTestEpinio(t)
	err := e.CreateApp(context.Background(), AppSpec{SourceType: SourceArchive, Archive: "sample-app.tar.gz", ManifestName: ManifestFile})
	require.Error(t, err)
	assert.Empty(t, f.Calls())
}

func writeChartExport(t *testing.T, path string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	for name, body := range map[string]string{
		"testapp-chart/Chart.yaml":  "apiVersion: v2\nname: testapp\n",
		"testapp-chart/values.yaml": "replicas: 1\n",
		"testapp-image.tar":         "layer",
	} {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

func TestChartAndImagesExport(t *testing.T) {
	ctx := context.Background()
	e, f := newTestEpinio(t)
	f.OnDownload(func(dir string) (string, error) {
		p := filepath.Join(dir, "testapp-helm-chart.tar.gz")
		writeChartExport(t, p)
		return p, nil
	})

	path, err := e.DownloadManifestChartsAndImages(ctx, "testapp", ExportChartAndImages, manifest.Expectation{})
	require.NoError(t, err)
	assert.Equal(t, "testapp-helm-chart.tar.gz", filepath.Base(path))

	require.NoError(t, e.FindExtractCheck(ctx, "testapp", ExportChartAndImages, manifest.Expectation{}))
	assert.FileExists(t, filepath.Join(e.Settings().DownloadsDir, "testapp-export", "testapp-chart", "Chart.yaml"))
}

func TestChartAndImagesExportMissing(t *testing.T) {
	e, _ := newTestEpinio(t)
	err := e.FindExtractCheck(context.Background(), "testapp", ExportChartAndImages, manifest.Expectation{})
	assert.ErrorIs(t, err, export.ErrNotFound)
}

func TestHTTPProber(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<h1>Hello from Epinio</h1>"))
	}))
	defer srv.Close()

	p := NewHTTPProber(5*time.Second, zaptest.NewLogger(t))

	status, body, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Hello from Epinio")

	status, _, err = p.Probe(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}
