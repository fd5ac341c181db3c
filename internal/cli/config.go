package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// defaultConfigFile is picked up from the working directory when --config is
// not given.
const defaultConfigFile = ".doxyrst.yml"

// Config holds everything the generate command needs. Flags win over the
// config file; the config file fills whatever was left at its zero value.
type Config struct {
	// SpecDir holds the YAML page specifications, one file per primary
	// symbol.
	SpecDir string `yaml:"specs" validate:"required"`
	// XMLDir is the doxygen XML output directory.
	XMLDir string `yaml:"xml" validate:"required"`
	// OutDir receives the generated pages and is purged of orphans.
	OutDir string `yaml:"out" validate:"required"`
	// HeaderDir is the tracked C++ header directory used for the
	// staleness check; empty disables regeneration entirely.
	HeaderDir string `yaml:"headers"`
	// DoxygenDir is the directory doxygen is invoked in (where its
	// Doxyfile lives).
	DoxygenDir string `yaml:"doxygen_dir"`
	// DoxygenCommand overrides the binary name.
	DoxygenCommand string `yaml:"doxygen_command"`

	// Project is the name stamped into every embedding directive.
	Project string `yaml:"project" validate:"required"`
	// Namespace is the library's root namespace, stripped from page
	// titles and bounding definition scopes.
	Namespace string `yaml:"namespace" validate:"required"`
	// DetailNamespace marks internal scopes whose alias targets are
	// hidden; "detail::" when empty.
	DetailNamespace string `yaml:"detail_namespace"`
	// Copyright is an optional first line for the attribution header.
	Copyright string `yaml:"copyright"`

	SkipDoxygen bool `yaml:"-"`
	Verbose     bool `yaml:"-"`
}

// loadConfigFile merges file values into cfg without overriding anything set
// by flags.
func loadConfigFile(cfg *Config, path string) error {
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return nil
		}
		path = defaultConfigFile
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if cfg.SpecDir == "" {
		cfg.SpecDir = file.SpecDir
	}
	if cfg.XMLDir == "" {
		cfg.XMLDir = file.XMLDir
	}
	if cfg.OutDir == "" {
		cfg.OutDir = file.OutDir
	}
	if cfg.HeaderDir == "" {
		cfg.HeaderDir = file.HeaderDir
	}
	if cfg.DoxygenDir == "" {
		cfg.DoxygenDir = file.DoxygenDir
	}
	if cfg.DoxygenCommand == "" {
		cfg.DoxygenCommand = file.DoxygenCommand
	}
	if cfg.Project == "" {
		cfg.Project = file.Project
	}
	if cfg.Namespace == "" {
		cfg.Namespace = file.Namespace
	}
	if cfg.DetailNamespace == "" {
		cfg.DetailNamespace = file.DetailNamespace
	}
	if cfg.Copyright == "" {
		cfg.Copyright = file.Copyright
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// AttributionHeader builds the fixed block every generated file starts with.
func (c *Config) AttributionHeader() string {
	var b strings.Builder
	if c.Copyright != "" {
		b.WriteString(".. " + c.Copyright + "\n\n")
	}
	b.WriteString(".. This file was auto-generated by doxyrst, do not edit.\n")
	return b.String()
}
