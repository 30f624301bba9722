package logger

// Config holds logging configuration, loadable from YAML/env via mapstructure.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level"`

	// Format selects the output format: "console" for human-readable
	// development output, "json" for structured production output.
	Format string `mapstructure:"format"`

	// Output selects the destination: "stdout" or "stderr".
	Output string `mapstructure:"output"`

	// NoColor disables ANSI colors in console format.
	NoColor bool `mapstructure:"no_color"`

	// Timestamp controls whether log lines carry a timestamp.
	Timestamp bool `mapstructure:"timestamp"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}
