package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML balance file and decodes it over Default().
// Unknown keys are rejected so typos surface instead of silently falling
// back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Decode(data, Default())
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode decodes YAML over a copy of base. Scalars and lists replace the
// base values; map entries are replaced whole (a partially specified
// policy or condition level does not inherit the remaining fields).
// An empty document returns base unchanged.
func Decode(data []byte, base Config) (Config, error) {
	cfg, err := base.Clone()
	if err != nil {
		return Config{}, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// Clone returns a deep copy so callers can tweak a Config without touching
// one already handed to a running simulation.
func (c Config) Clone() (Config, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return Config{}, fmt.Errorf("clone config: %w", err)
	}
	var out Config
	if err := json.Unmarshal(data, &out); err != nil {
		return Config{}, fmt.Errorf("clone config: %w", err)
	}
	return out, nil
}

// Marshal renders the configuration as YAML.
func Marshal(c Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
