// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"
	"time"

	"github.com/automa-saga/logx"
	"github.com/joomcode/errorx"
	"github.com/spf13/viper"

	"github.com/docrender/bundlekeeper/pkg/bundle"
	"github.com/docrender/bundlekeeper/pkg/sanity"
)

// Config holds the global configuration for the application.
type Config struct {
	Log    logx.LoggingConfig `yaml:"log" json:"log"`
	Bundle BundleConfig       `yaml:"bundle" json:"bundle"`
}

// BundleConfig represents the `bundle` configuration block.
type BundleConfig struct {
	Asset           string        `yaml:"asset" json:"asset"`                     // Catalog asset name
	Version         string        `yaml:"version" json:"version"`                 // Version to pin, e.g. v10.19.2
	TargetDir       string        `yaml:"targetDir" json:"targetDir"`             // Directory holding the unpacked tree
	TempDir         string        `yaml:"tempDir" json:"tempDir"`                 // Directory for the transient archive file
	StateDir        string        `yaml:"stateDir" json:"stateDir"`               // Directory for install receipts
	URLTemplate     string        `yaml:"urlTemplate" json:"urlTemplate"`         // Mirror override for the catalog URL template
	AllowHTTP       bool          `yaml:"allowHttp" json:"allowHttp"`             // Permit http URL templates (trusted mirrors only)
	DownloadTimeout time.Duration `yaml:"downloadTimeout" json:"downloadTimeout"` // Bound on fetch and extract
}

// Validate validates all bundle configuration fields. Empty optional fields
// are skipped; they fall back to built-in defaults.
func (c *BundleConfig) Validate() error {
	if c.Asset != "" {
		if err := sanity.ValidateIdentifier(c.Asset); err != nil {
			return errorx.IllegalArgument.Wrap(err, "invalid asset name: %s", c.Asset)
		}
	}

	if c.TargetDir != "" {
		if _, err := sanity.SanitizePath(c.TargetDir); err != nil {
			return errorx.IllegalArgument.Wrap(err, "invalid target directory: %s", c.TargetDir)
		}
	}

	if c.TempDir != "" {
		if _, err := sanity.SanitizePath(c.TempDir); err != nil {
			return errorx.IllegalArgument.Wrap(err, "invalid temp directory: %s", c.TempDir)
		}
	}

	if c.StateDir != "" {
		if _, err := sanity.SanitizePath(c.StateDir); err != nil {
			return errorx.IllegalArgument.Wrap(err, "invalid state directory: %s", c.StateDir)
		}
	}

	if c.URLTemplate != "" {
		opts := &sanity.ValidateURLOptions{AllowHTTP: c.AllowHTTP}
		if err := sanity.ValidateURL(c.URLTemplate, opts); err != nil {
			return errorx.IllegalArgument.Wrap(err, "invalid url template")
		}
	}

	if c.DownloadTimeout < 0 {
		return errorx.IllegalArgument.New("download timeout cannot be negative: %s", c.DownloadTimeout)
	}

	return nil
}

// Validate validates all configuration fields.
func (c Config) Validate() error {
	return c.Bundle.Validate()
}

var globalConfig = Config{
	Log: logx.LoggingConfig{
		Level:          "Debug",
		ConsoleLogging: true,
		FileLogging:    false,
	},
	Bundle: BundleConfig{
		Asset:    "renderer",
		StateDir: "/var/lib/bundlekeeper/state",
	},
}

// Initialize loads the configuration from the specified file. An empty path
// leaves the built-in defaults in place.
func Initialize(path string) error {
	if path != "" {
		globalConfig = Config{}
		viper.Reset()
		viper.SetConfigFile(path)
		viper.SetEnvPrefix("BUNDLEKEEPER")
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		err := viper.ReadInConfig()
		if err != nil {
			return NotFoundError.Wrap(err, "failed to read config file: %s", path).
				WithProperty(errorx.PropertyPayload(), path)
		}

		if err := viper.Unmarshal(&globalConfig); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to parse configuration").
				WithProperty(errorx.PropertyPayload(), path)
		}
	}

	return globalConfig.Validate()
}

// Get returns the loaded configuration.
func Get() Config {
	return globalConfig
}

func Set(c *Config) error {
	globalConfig = *c
	return nil
}

// OverrideBundleConfig updates the bundle configuration with provided
// overrides. Empty values are ignored.
func OverrideBundleConfig(overrides BundleConfig) {
	if overrides.Asset != "" {
		globalConfig.Bundle.Asset = overrides.Asset
	}
	if overrides.Version != "" {
		globalConfig.Bundle.Version = overrides.Version
	}
	if overrides.TargetDir != "" {
		globalConfig.Bundle.TargetDir = overrides.TargetDir
	}
	if overrides.TempDir != "" {
		globalConfig.Bundle.TempDir = overrides.TempDir
	}
	if overrides.StateDir != "" {
		globalConfig.Bundle.StateDir = overrides.StateDir
	}
	if overrides.URLTemplate != "" {
		globalConfig.Bundle.URLTemplate = overrides.URLTemplate
	}
	if overrides.AllowHTTP {
		globalConfig.Bundle.AllowHTTP = true
	}
	if overrides.DownloadTimeout > 0 {
		globalConfig.Bundle.DownloadTimeout = overrides.DownloadTimeout
	}
}

// InstallerOptions translates the bundle configuration into installer options.
func (c BundleConfig) InstallerOptions() []bundle.Option {
	var opts []bundle.Option
	if c.TargetDir != "" {
		opts = append(opts, bundle.WithTargetDir(c.TargetDir))
	}
	if c.TempDir != "" {
		opts = append(opts, bundle.WithTempDir(c.TempDir))
	}
	if c.URLTemplate != "" {
		opts = append(opts, bundle.WithURLTemplate(c.URLTemplate))
	}
	if c.DownloadTimeout > 0 {
		opts = append(opts, bundle.WithDownloadTimeout(c.DownloadTimeout))
	}
	return opts
}
