package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/epinio/epinio-e2e/internal/scenario"
	"github.com/epinio/epinio-e2e/internal/version"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestListCommand(t *testing.T) {
	out := execute(t, "list", "configurations")

	assert.Contains(t, out, "configurations\n")
	assert.Contains(t, out, "  newAppWithConfiguration\n")
	assert.Contains(t, out, "(cleanup: ")
	assert.NotContains(t, out, "newNamespace")
}

func TestListCommandUnknownSuite(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"list", "nope"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.ErrorIs(t, rootCmd.Execute(), scenario.ErrUnknownCase)
}

func TestVersionCommandYAML(t *testing.T) {
	out := execute(t, "version", "-o", "yaml")

	var info version.Info
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestResolveLabels(t *testing.T) {
	reg := scenario.NewRegistry(scenario.Params{})

	all, err := resolveLabels(reg, scenario.Connection, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"firstConnection"}, all)

	picked, err := resolveLabels(reg, scenario.Applications, []string{"customRoute"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"customRoute"}, picked)

	_, err = resolveLabels(reg, scenario.Applications, []string{"customRoute", "bogus"}, false)
	assert.ErrorIs(t, err, scenario.ErrUnknownCase)

	_, err = resolveLabels(reg, "bogus", nil, true)
	assert.ErrorIs(t, err, scenario.ErrUnknownCase)
}
