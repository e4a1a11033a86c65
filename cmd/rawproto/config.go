package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/rawproto/wire"
)

// fileConfig is the optional --config file. Flags given on the command line
// take precedence over it.
type fileConfig struct {
	MaxDepth        int      `yaml:"max_depth" toml:"max_depth"`
	ShortestVarints bool     `yaml:"shortest_varints" toml:"shortest_varints"`
	ProtoPaths      []string `yaml:"proto_paths" toml:"proto_paths"`
	Protos          []string `yaml:"protos" toml:"protos"`
	DescriptorSets  []string `yaml:"descriptor_sets" toml:"descriptor_sets"`
	Message         string   `yaml:"message" toml:"message"`
	Output          string   `yaml:"output" toml:"output"`
	LogLevel        string   `yaml:"log_level" toml:"log_level"`
}

// loadConfig reads a YAML or, for a .toml extension, TOML config file.
// Unknown keys are rejected.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fileConfig{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("load config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// wireConfig starts from wire.DefaultConfig, so environment overrides
// apply, then layers the file settings on top.
func (c fileConfig) wireConfig() wire.Config {
	cfg := wire.DefaultConfig()
	if c.MaxDepth > 0 {
		cfg.MaxDepth = c.MaxDepth
	}
	if c.ShortestVarints {
		cfg.ShortestVarints = true
	}
	return cfg
}
