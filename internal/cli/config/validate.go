package config

import (
	"errors"
	"fmt"
	"go/token"
	"slices"
)

// OutputFormats are the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("output_dir is required"))
	}
	if c.StatePath == "" && !c.NoState {
		errs = append(errs, fmt.Errorf("state_path is required unless no_state is set"))
	}
	if c.Parallel < 1 {
		errs = append(errs, fmt.Errorf("parallel must be at least 1, got %d", c.Parallel))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps))
	}
	if c.PackageName != "" && !token.IsIdentifier(c.PackageName) {
		errs = append(errs, fmt.Errorf("package_name %q is not a Go identifier", c.PackageName))
	}
	if c.OutputFormat != "" && !slices.Contains(OutputFormats, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output %q is not one of %v", c.OutputFormat, OutputFormats))
	}
	for name, driver := range c.Families {
		if driver == "" {
			errs = append(errs, fmt.Errorf("families.%s has no driver", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
