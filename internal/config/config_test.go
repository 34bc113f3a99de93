package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goreconcile/hierarchical"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{SearchPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Empty(t, cfg.Methods)
	assert.Empty(t, cfg.File)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".hierrec.yaml", `
log_level: debug
parallel: 4
methods:
  - method: bottom_up
  - method: min_trace
    params:
      method: mint_shrink
`)

	cfg, err := Load(Options{SearchPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, filepath.Join(dir, ".hierrec.yaml"), cfg.File)
	assert.Equal(t, []hierarchical.Spec{
		{Method: "bottom_up"},
		{Method: "min_trace", Params: map[string]string{"method": "mint_shrink"}},
	}, cfg.Methods)
}

func TestLoadExplicitConfigFileMustExist(t *testing.T) {
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "hierrec.yaml", "parallel: 2\nlog_level: warn\nlog_format: json\n")
	t.Setenv("HIERREC_LOG_LEVEL", "error")
	t.Setenv("HIERREC_METHODS", "bottom_up; min_trace:method=ols")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("parallel", 1, "")
	require.NoError(t, flags.Parse([]string{"--parallel=8"}))

	cfg, err := Load(Options{ConfigFile: path, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Parallel, "flag beats file")
	assert.Equal(t, "error", cfg.LogLevel, "env beats file")
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []hierarchical.Spec{
		{Method: "bottom_up"},
		{Method: "min_trace", Params: map[string]string{"method": "ols"}},
	}, cfg.Methods)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := write(t, dir, ".env", "HIERREC_LOG_FORMAT=console\n")
	t.Cleanup(func() { os.Unsetenv("HIERREC_LOG_FORMAT") })

	cfg, err := Load(Options{EnvFiles: []string{env, filepath.Join(dir, ".env.local")}})
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestParseMethodList(t *testing.T) {
	specs, err := ParseMethodList(";top_down:method=average_proportions;;")
	require.NoError(t, err)
	assert.Equal(t, []hierarchical.Spec{
		{Method: "top_down", Params: map[string]string{"method": "average_proportions"}},
	}, specs)

	_, err = ParseMethodList("min_trace:method")
	require.Error(t, err)
}

func TestLoadMethods(t *testing.T) {
	specs, err := LoadMethods(strings.NewReader(`
methods:
- method: bottom_up
- method: top_down
  params:
    method: proportion_averages
`))
	require.NoError(t, err)
	assert.Equal(t, []hierarchical.Spec{
		{Method: "bottom_up"},
		{Method: "top_down", Params: map[string]string{"method": "proportion_averages"}},
	}, specs)

	_, err = LoadMethods(strings.NewReader("methods:\n- params:\n    method: ols\n"))
	require.Error(t, err)

	_, err = LoadMethods(strings.NewReader("methods: [unclosed"))
	require.Error(t, err)
}

func TestMarshalMethodsRoundTrip(t *testing.T) {
	specs := []hierarchical.Spec{
		{Method: "bottom_up"},
		{Method: "min_trace", Params: map[string]string{"method": "wls_var"}},
	}

	data, err := MarshalMethods(specs)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "params: {}")

	path := write(t, t.TempDir(), "methods.yaml", string(data))
	got, err := LoadMethodsFile(path)
	require.NoError(t, err)
	assert.Equal(t, specs, got)
}
