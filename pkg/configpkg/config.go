// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress        string `mapstructure:"SERVER_ADDRESS"`
	UserConcurrencyLimit int64  `mapstructure:"USER_CONCURRENCY_LIMIT"`
	Environement         string `mapstructure:"GO_ENV"`
}

// DefaultUserConcurrencyLimit bounds in-flight operations per user when the
// config does not override it.
const DefaultUserConcurrencyLimit = 10

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("USER_CONCURRENCY_LIMIT", DefaultUserConcurrencyLimit)

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
