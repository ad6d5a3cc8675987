package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/olivier-w/tangle/internal/engine"
	"github.com/olivier-w/tangle/internal/feedback"
	"gopkg.in/yaml.v3"
)

// Config is the tangle configuration file. Keys missing from the file
// keep their defaults.
type Config struct {
	Engine        engine.Config   `yaml:",inline"`
	Feedback      feedback.Config `yaml:"feedback"`
	ReducedMotion bool            `yaml:"reducedMotion"`
	Debug         bool            `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine:   engine.DefaultConfig(),
		Feedback: feedback.DefaultConfig(),
	}
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r over the defaults. Unknown keys are errors.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as YAML, for `tangle -dump-config`.
func Write(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
