package options

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/raymarch"
	"github.com/richinsley/goraymarch/shader"
	"gopkg.in/yaml.v3"
)

var (
	errInvalidSize        = errors.New("width and height must be positive")
	errInvalidFPS         = errors.New("fps must be positive")
	errWatchWithoutConfig = errors.New("-watch requires -config")
)

// Config is the YAML configuration file.
type Config struct {
	Feature   raymarch.Settings `yaml:"feature"`
	Materials []material.Spec   `yaml:"materials"`

	// Dir is the directory material sources are resolved against.
	Dir string `yaml:"-"`
}

// DefaultConfig is used when no file is given.
func DefaultConfig() *Config {
	return &Config{Feature: raymarch.DefaultSettings(), Dir: "."}
}

// ParseConfig decodes a configuration. Unset feature fields keep their
// defaults; unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.Feature.PassName == "" {
		cfg.Feature.PassName = raymarch.DefaultPassName
	}
	return cfg, nil
}

// LoadConfig reads and parses the file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Resolve builds the material library on top of the built-in materials and
// returns the feature settings with the configured material attached.
// A configured material name that does not exist is an error; an empty
// name leaves the feature without a material.
func (c *Config) Resolve() (raymarch.Settings, *material.Library, error) {
	lib, err := material.LoadLibrary(c.Materials, os.DirFS(c.Dir), shader.Builtins())
	if err != nil {
		return raymarch.Settings{}, nil, err
	}
	settings := c.Feature
	settings.Material = nil
	if settings.MaterialName != "" {
		m, err := lib.Get(settings.MaterialName)
		if err != nil {
			return raymarch.Settings{}, nil, errors.Wrap(err, "feature material")
		}
		settings.Material = m
	}
	return settings, lib, nil
}
