package logging

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	Format    string `yaml:"format" json:"format"`       // text, json or logfmt
	Timestamp bool   `yaml:"timestamp" json:"timestamp"` // whether to include timestamps
	Caller    bool   `yaml:"caller" json:"caller"`
	// File receives log output instead of stderr when set
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// DefaultConfig returns a default logging configuration
func DefaultConfig() LoggingConfig {
	return LoggingConfig{
		Level:     "info",
		Format:    "text",
		Timestamp: true,
	}
}

// DevelopmentConfig returns the configuration selected by --debug
func DevelopmentConfig() LoggingConfig {
	config := DefaultConfig()
	config.Level = "debug"
	config.Caller = true
	return config
}
