package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gitManifest = `name: testapp
configuration:
  instances: 5
  configurations:
  - configuration01
  environment:
    TEST_VAR: epinio-e2e
    PORT: 8080
  routes:
  - custom-route-testapp.192.168.1.10.sslip.io
  appchart: standard
origin:
  git:
    url: https://github.com/epinio/example-go
    revision: e84b2a7
    provider: github_com
staging:
  builder: paketobuildpacks/builder:tiny
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(gitManifest))
	require.NoError(t, err)

	assert.Equal(t, "testapp", m.Name)
	assert.Equal(t, 5, m.Instances())
	assert.Equal(t, []string{"configuration01"}, m.Configuration.Configurations)
	assert.Equal(t, "8080", m.Configuration.Environment["PORT"])
	assert.Equal(t, "standard", m.Configuration.AppChart)
	require.NotNil(t, m.Origin.Git)
	assert.Equal(t, "e84b2a7", m.Origin.Git.Revision)
	assert.Equal(t, "GitHub", m.SourceKind())
	assert.Equal(t, "paketobuildpacks/builder:tiny", m.Staging.Builder)
}

func TestParseDefaults(t *testing.T) {
	m, err := Parse([]byte("name: testapp\norigin:\n  container: httpd:latest\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Instances())
	assert.Equal(t, "Container Image", m.SourceKind())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty document"},
		{"missing name", "configuration:\n  instances: 1\n", "name"},
		{"bad name", "name: Test_App\n", "name"},
		{"negative instances", "name: testapp\nconfiguration:\n  instances: -1\n", "instances"},
		{"routes not a list", "name: testapp\nconfiguration:\n  routes: a.b.c\n", "routes"},
		{"git without url", "name: testapp\norigin:\n  git:\n    revision: abc\n", "url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseRejectsBrokenYAML(t *testing.T) {
	_, err := Parse([]byte("name: [testapp"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(gitManifest), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testapp", m.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheck(t *testing.T) {
	m, err := Parse([]byte(gitManifest))
	require.NoError(t, err)

	assert.NoError(t, m.Check(Expectation{
		Name:          "testapp",
		Route:         "custom-route-testapp.192.168.1.10.sslip.io",
		Instances:     5,
		Configuration: "configuration01",
		Vars:          []string{"TEST_VAR"},
	}))
	assert.NoError(t, m.Check(Expectation{}))

	err = m.Check(Expectation{Name: "otherapp", Instances: 2, Configuration: "configuration02", Vars: []string{"MISSING"}})
	require.ErrorIs(t, err, ErrMismatch)
	for _, want := range []string{"otherapp", "instances is 5", "configuration02", "MISSING"} {
		assert.Contains(t, err.Error(), want)
	}
}
