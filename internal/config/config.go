// Package config reads the optional YAML configuration file of the bike command.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFiles is the file names from which we attempt to read configuration.
var DefaultConfigFiles = []string{"bike.yml", "bike.yaml"}

// Configuration holds the defaults that command-line flags fall back to.
type Configuration struct {
	// Params is the parameter set name: bike128, bike192 or bike256
	Params   string `yaml:"params"`
	LogLevel string `yaml:"loglevel"`
	// Trials is the number of round trips run by selftest
	Trials int `yaml:"trials"`
	// Workers bounds the number of concurrent selftest trials
	Workers int `yaml:"workers"`
	// Seed, when present, makes key generation and encapsulation reproducible
	Seed *int64 `yaml:"seed"`

	sourceFile string
}

// Default returns the built-in configuration.
func Default() *Configuration {
	return &Configuration{
		Params:   "bike128",
		LogLevel: "info",
		Trials:   16,
		Workers:  4,
	}
}

// Source returns the file the configuration was read from, or "" for the defaults.
func (c *Configuration) Source() string {
	return c.sourceFile
}

// Validate rejects values no command can work with.
func (c *Configuration) Validate() error {
	if c.Params == "" {
		return fmt.Errorf("params must not be empty")
	}
	if c.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// FindDefaultConfigPath returns the first of DefaultConfigFiles present in dir, or "".
func FindDefaultConfigPath(dir string) string {
	for _, name := range DefaultConfigFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ReadConfigFile overlays the settings in configFile on the defaults.
// Unknown keys are reported as warnings rather than errors. The result is not validated,
// since command-line flags may still override it; callers run Validate once they have.
func ReadConfigFile(configFile string) (cfg *Configuration, warnings string, err error) {
	cfg = Default()
	if configFile == "" {
		return cfg, "", nil
	}

	file, err := os.Open(configFile)
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot open config file")
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		if err == io.EOF {
			cfg.sourceFile = configFile
			return cfg, "", nil
		}
		return nil, "", errors.Wrap(err, "error parsing YAML in config file at "+configFile)
	}
	cfg.sourceFile = configFile

	// Parse it again, with strict mode, to find warnings.
	if _, err := file.Seek(0, io.SeekStart); err == nil {
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		var unused Configuration
		if err := decoder.Decode(&unused); err != nil && err != io.EOF {
			warnings = err.Error()
		}
	}

	return cfg, warnings, nil
}
