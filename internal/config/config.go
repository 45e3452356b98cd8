package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config keys, shared by the config file, KEECRACK_* environment variables and bound flags
const (
	KeyMaxTransformRounds = "max_transform_rounds"
	KeyStrictHeaders      = "strict_headers"
	KeyCheckpointFile     = "checkpoint_file"
	KeyResultFile         = "result_file"
	KeyKeyFileExtension   = "key_file_extension"
	KeyCheckpointInterval = "checkpoint_interval"
	KeyProgressInterval   = "progress_interval"
)

// Config holds the settings for a recovery run
type Config struct {
	MaxTransformRounds uint64        `mapstructure:"max_transform_rounds" json:"max_transform_rounds" yaml:"max_transform_rounds"`
	StrictHeaders      bool          `mapstructure:"strict_headers" json:"strict_headers" yaml:"strict_headers"`
	CheckpointFile     string        `mapstructure:"checkpoint_file" json:"checkpoint_file" yaml:"checkpoint_file"`
	ResultFile         string        `mapstructure:"result_file" json:"result_file" yaml:"result_file"`
	KeyFileExtension   string        `mapstructure:"key_file_extension" json:"key_file_extension" yaml:"key_file_extension"`
	CheckpointInterval uint64        `mapstructure:"checkpoint_interval" json:"checkpoint_interval" yaml:"checkpoint_interval"`
	ProgressInterval   time.Duration `mapstructure:"progress_interval" json:"progress_interval" yaml:"progress_interval"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMaxTransformRounds, 60_000_000)
	v.SetDefault(KeyStrictHeaders, true)
	v.SetDefault(KeyCheckpointFile, "checkpoints.dat")
	v.SetDefault(KeyResultFile, "password.txt")
	v.SetDefault(KeyKeyFileExtension, ".key")
	v.SetDefault(KeyCheckpointInterval, 1000)
	v.SetDefault(KeyProgressInterval, "2s")
}

// Load reads keecrack.yaml from the usual locations, or configFile when it is set,
// and overlays KEECRACK_* environment variables on the defaults.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("keecrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.keecrack")
		v.AddConfigPath("/etc/keecrack")
	}

	SetDefaults(v)

	v.SetEnvPrefix("KEECRACK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file, defaults apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no run can use
func (c *Config) Validate() error {
	if c.MaxTransformRounds == 0 {
		return errors.New("max_transform_rounds must be greater than zero")
	}
	if c.CheckpointFile == "" {
		return errors.New("checkpoint_file must not be empty")
	}
	if c.ResultFile == "" {
		return errors.New("result_file must not be empty")
	}
	if c.CheckpointFile == c.ResultFile {
		return fmt.Errorf("checkpoint_file and result_file both point to %s", c.CheckpointFile)
	}
	if c.ProgressInterval < 0 {
		return errors.New("progress_interval must not be negative")
	}
	return nil
}
