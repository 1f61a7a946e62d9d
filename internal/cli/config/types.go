// Package config provides configuration management for the dessist CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	// OutputDir receives one generated project per package.
	OutputDir string `koanf:"output_dir"`
	StatePath string `koanf:"state_path"`
	NoState   bool   `koanf:"no_state"`

	// PackageName is the package clause of generated code.
	PackageName string `koanf:"package_name"`
	// ModulePrefix prefixes the module path of each generated go.mod.
	ModulePrefix string `koanf:"module_prefix"`
	// Families maps connection creation names to database/sql drivers.
	Families map[string]string `koanf:"families"`
	MaxSteps int               `koanf:"max_steps"`

	Parallel     int    `koanf:"parallel"`
	Force        bool   `koanf:"force"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot anchors relative paths from the config file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutputDir   = "generated"
	DefaultStateFile   = ".dessist/state.db"
	DefaultPackageName = "main"
	DefaultParallel    = 4
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown

	// ConfigFileName is looked up in the project root.
	ConfigFileName = "dessist.yaml"
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "DESSIST_"
)
