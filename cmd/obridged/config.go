package main

import (
	"strings"
	"time"

	"github.com/obridge/weave/errors"
	"github.com/spf13/viper"
)

// configuration holds all settings of the daemon. Every value can be
// provided by an environment variable prefixed with OBRIDGE_, ie.
// OBRIDGE_HTTP, or by an optional obridged.env file using unprefixed names.
type configuration struct {
	HTTP        string        `mapstructure:"HTTP"`
	Genesis     string        `mapstructure:"GENESIS"`
	LogLevel    string        `mapstructure:"LOG_LEVEL"`
	PollDelay   time.Duration `mapstructure:"POLL_DELAY"`
	Journal     int64         `mapstructure:"JOURNAL"`
	DevSubmit   bool          `mapstructure:"DEV_SUBMIT"`
	CORSOrigins []string      `mapstructure:"CORS_ORIGINS"`
}

var configKeys = []string{
	"HTTP",
	"GENESIS",
	"LOG_LEVEL",
	"POLL_DELAY",
	"JOURNAL",
	"DEV_SUBMIT",
	"CORS_ORIGINS",
}

// loadConfiguration reads the configuration from the environment and the
// optional obridged.env file found in given directory.
func loadConfiguration(dir string) (*configuration, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("obridged")
	v.SetConfigType("env")
	v.SetEnvPrefix("OBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("HTTP", ":8000")
	v.SetDefault("GENESIS", "genesis.json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("POLL_DELAY", "200ms")
	v.SetDefault("JOURNAL", 10000)
	v.SetDefault("DEV_SUBMIT", false)
	v.SetDefault("CORS_ORIGINS", []string{"https://*", "http://*"})

	// Unmarshal only sees environment variables that were bound.
	for _, k := range configKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "bind %s: %s", k, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrapf(errors.ErrInput, "read config: %s", err)
		}
	}

	var conf configuration
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode config: %s", err)
	}
	if conf.HTTP == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "http address")
	}
	if conf.PollDelay <= 0 {
		return nil, errors.Wrap(errors.ErrInput, "poll delay must be positive")
	}
	return &conf, nil
}
