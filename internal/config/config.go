// SPDX-License-Identifier: EPL-2.0

// Package config loads aafembed settings from a YAML file, AAFEMBED_
// environment variables and defaults, in increasing order of precedence
// below command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/ik5/aafembed/container"
	"github.com/ik5/aafembed/internal/compress"
)

const (
	defaultMobName        = "AudioMob"
	defaultSegmentSize    = "1MiB"
	defaultMaxInMemory    = "64MiB"
	defaultChunkSize      = "4MiB"
	defaultMemoryFraction = 0.25

	// EnvPrefix prefixes every environment override, e.g.
	// AAFEMBED_CONTAINER_COMPRESSOR.
	EnvPrefix = "AAFEMBED"
)

// Config holds all configuration for the application.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging" yaml:"logging"`
	Embed     EmbedConfig     `mapstructure:"embed" json:"embed" yaml:"embed"`
	Container ContainerConfig `mapstructure:"container" json:"container" yaml:"container"`
	Reader    ReaderConfig    `mapstructure:"reader" json:"reader" yaml:"reader"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level"`    // debug, info, warn, error
	Format     string `mapstructure:"format" json:"format" yaml:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	TimeFormat string `mapstructure:"time_format" json:"time_format" yaml:"time_format"`
}

// EmbedConfig controls how each asset becomes a mob.
type EmbedConfig struct {
	MobName      string `mapstructure:"mob_name" json:"mob_name" yaml:"mob_name"`
	Compression  string `mapstructure:"compression" json:"compression" yaml:"compression"` // enable, disable
	StrictFrames bool   `mapstructure:"strict_frames" json:"strict_frames" yaml:"strict_frames"`
	Locator      bool   `mapstructure:"locator" json:"locator" yaml:"locator"`
	Metadata     bool   `mapstructure:"metadata" json:"metadata" yaml:"metadata"`
}

// ContainerConfig controls container file storage.
type ContainerConfig struct {
	Compressor  string   `mapstructure:"compressor" json:"compressor" yaml:"compressor"`
	SegmentSize ByteSize `mapstructure:"segment_size" json:"segment_size" yaml:"segment_size"`
	Overwrite   bool     `mapstructure:"overwrite" json:"overwrite" yaml:"overwrite"`
}

// ReaderConfig bounds how much sample data is held in memory.
type ReaderConfig struct {
	MaxInMemory    ByteSize `mapstructure:"max_in_memory" json:"max_in_memory" yaml:"max_in_memory"`
	ChunkSize      ByteSize `mapstructure:"chunk_size" json:"chunk_size" yaml:"chunk_size"`
	MemoryFraction float64  `mapstructure:"memory_fraction" json:"memory_fraction" yaml:"memory_fraction"`
}

// Load reads configuration from file and environment variables. An empty
// path searches for .aafembed.yaml in the working directory, the home
// directory and /etc/aafembed.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".aafembed")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.AddConfigPath("/etc/aafembed")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return Decode(v)
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", "")

	v.SetDefault("embed.mob_name", defaultMobName)
	v.SetDefault("embed.compression", "enable")
	v.SetDefault("embed.strict_frames", false)
	v.SetDefault("embed.locator", true)
	v.SetDefault("embed.metadata", true)

	v.SetDefault("container.compressor", compress.Brotli)
	v.SetDefault("container.segment_size", defaultSegmentSize)
	v.SetDefault("container.overwrite", false)

	v.SetDefault("reader.max_in_memory", defaultMaxInMemory)
	v.SetDefault("reader.chunk_size", defaultChunkSize)
	v.SetDefault("reader.memory_fraction", defaultMemoryFraction)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Embed.MobName == "" {
		return fmt.Errorf("embed.mob_name is required")
	}
	if _, err := container.ParseCompression(c.Embed.Compression); err != nil {
		return fmt.Errorf("embed.compression: %w", err)
	}

	if _, err := compress.Lookup(c.Container.Compressor); err != nil {
		return fmt.Errorf("container.compressor must be one of: %s", strings.Join(compress.Names(), ", "))
	}
	if c.Container.SegmentSize < 1 {
		return fmt.Errorf("container.segment_size must be positive")
	}

	if c.Reader.ChunkSize < 1 {
		return fmt.Errorf("reader.chunk_size must be positive")
	}
	if c.Reader.MaxInMemory < 0 {
		return fmt.Errorf("reader.max_in_memory must not be negative")
	}
	if c.Reader.MemoryFraction < 0 || c.Reader.MemoryFraction > 1 {
		return fmt.Errorf("reader.memory_fraction must be between 0 and 1")
	}

	return nil
}

// CompressionMode returns the parsed embed.compression setting.
func (c *EmbedConfig) CompressionMode() container.Compression {
	comp, _ := container.ParseCompression(c.Compression)
	return comp
}
