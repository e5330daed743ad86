// Package config loads the validator's optional YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = "clap-validator.yaml"

// Duration decodes YAML duration strings like "250ms". yaml.v3 has no
// native time.Duration support.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("durations must be strings like \"100ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the tunable validator settings. Every field is optional;
// zero values fall back to the built-in defaults, and command-line flags
// override file values.
type Config struct {
	// ScanTimeLimit is the threshold for the scan-time test.
	ScanTimeLimit Duration `yaml:"scan_time_limit,omitempty"`

	// FuzzPermutations is the number of random parameter permutations in
	// param-fuzz-basic.
	FuzzPermutations int `yaml:"fuzz_permutations,omitempty"`

	// FuzzBuffers is the number of audio buffers processed per permutation.
	FuzzBuffers int `yaml:"fuzz_buffers,omitempty"`

	// Seed fixes the RNG used by the randomized tests.
	Seed uint64 `yaml:"seed,omitempty"`

	// SearchPaths, when set, replaces the platform plugin directories for
	// `list plugins`.
	SearchPaths []string `yaml:"search_paths,omitempty"`
}

// Load reads and strictly decodes a config file. Unknown keys are an
// error so typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return parse(data)
}

// LoadDefault loads ./clap-validator.yaml when present. A missing file is
// not an error; the zero config is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load(DefaultFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if cfg.FuzzPermutations < 0 {
		return nil, fmt.Errorf("fuzz_permutations must not be negative")
	}
	if cfg.FuzzBuffers < 0 {
		return nil, fmt.Errorf("fuzz_buffers must not be negative")
	}
	if cfg.ScanTimeLimit < 0 {
		return nil, fmt.Errorf("scan_time_limit must not be negative")
	}
	return &cfg, nil
}
