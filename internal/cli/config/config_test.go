package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// newFlags mirrors the flags the CLI registers.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("output-dir", "", "")
	fs.String("state", "", "")
	fs.Bool("no-state", false, "")
	fs.Int("parallel", 0, "")
	fs.String("package-name", "", "")
	fs.StringP("output", "o", "", "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	root, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(cfg.ProjectRoot)
	assert.Equal(t, root, gotRoot)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultOutputDir), cfg.OutputDir)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultPackageName, cfg.PackageName)
	assert.Equal(t, DefaultParallel, cfg.Parallel)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, "sqlserver", cfg.Families["OLEDB"])
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`
output_dir: build
package_name: etl
module_prefix: example.com/etl
parallel: 2
families:
  ODBC: odbc
`), 0o600))

	// The file is found from a nested working directory
	nested := filepath.Join(dir, "packages", "nightly")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "build"), cfg.OutputDir)
	assert.Equal(t, "build", filepath.Base(cfg.OutputDir))
	assert.Equal(t, "etl", cfg.PackageName)
	assert.Equal(t, "example.com/etl", cfg.ModulePrefix)
	assert.Equal(t, 2, cfg.Parallel)
	assert.Equal(t, "odbc", cfg.Families["ODBC"])
	assert.Equal(t, "sqlserver", cfg.Families["OLEDB"], "defaults merge with the file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("package_name: fromfile\nparallel: 2\noutput: text\n"), 0o600))
	chdir(t, dir)
	ResetConfig()

	t.Setenv("DESSIST_PARALLEL", "3")
	t.Setenv("DESSIST_PACKAGE_NAME", "fromenv")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--package-name", "fromflag", "--state", "st/state.db", "-o", "json"}))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, "fromflag", cfg.PackageName, "flags win over env")
	assert.Equal(t, 3, cfg.Parallel, "env wins over file")
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, filepath.IsAbs(cfg.StatePath))
	assert.Equal(t, filepath.Join("st", "state.db"), filepath.Join(filepath.Base(filepath.Dir(cfg.StatePath)), filepath.Base(cfg.StatePath)))
}

func TestLoadConfig_UnchangedFlagsKeepLowerLayers(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	ResetConfig()
	t.Setenv("DESSIST_PARALLEL", "6")

	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Parallel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	ResetConfig()

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--parallel", "0", "--package-name", "not-an-ident"}))

	_, err := LoadConfig("", flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "parallel must be at least 1")
	assert.Contains(t, err.Error(), "not a Go identifier")
	assert.Nil(t, GetCurrentConfig())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			OutputDir:    "out",
			StatePath:    "state.db",
			PackageName:  "main",
			Parallel:     1,
			OutputFormat: "auto",
			Families:     map[string]string{"OLEDB": "sqlserver"},
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing output dir", mutate: func(c *Config) { c.OutputDir = "" }, errSubstr: "output_dir is required"},
		{name: "missing state path", mutate: func(c *Config) { c.StatePath = "" }, errSubstr: "state_path is required"},
		{name: "no state needs no path", mutate: func(c *Config) { c.StatePath = ""; c.NoState = true }},
		{name: "negative max steps", mutate: func(c *Config) { c.MaxSteps = -1 }, errSubstr: "max_steps"},
		{name: "keyword is an identifier", mutate: func(c *Config) { c.PackageName = "etl_2" }},
		{name: "bad package name", mutate: func(c *Config) { c.PackageName = "2etl" }, errSubstr: "package_name"},
		{name: "unknown output", mutate: func(c *Config) { c.OutputFormat = "xml" }, errSubstr: `output "xml"`},
		{name: "family without driver", mutate: func(c *Config) { c.Families["ADO.NET"] = "" }, errSubstr: "families.ADO.NET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
