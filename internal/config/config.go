// Package config loads optional client defaults from
// ~/.config/awssso/config.toml. The file overrides the built-in console
// defaults (region, endpoint bases, relay state, page sizes); explicit
// options passed to the client constructor win over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Defaults for the console wire contract. The relay state is what the
// console frontend sends when creating a permission set without one.
const (
	DefaultRegion     = "eu-west-1"
	DefaultListBase   = "https://eu-west-1.console.aws.amazon.com/singlesignon/api"
	DefaultRelayState = "https://eu-west-1.console.aws.amazon.com/console/home?region=eu-west-1#"

	defaultHTTPTimeoutSeconds = 30
	defaultUserPageSize       = 25
	defaultGroupPageSize      = 100
)

// Config holds client defaults from config.toml. All fields use flat
// snake_case TOML keys.
type Config struct {
	Region             string `mapstructure:"region"               toml:"region"`
	APIBase            string `mapstructure:"api_base"             toml:"api_base"`
	ListBase           string `mapstructure:"list_base"            toml:"list_base"`
	RelayState         string `mapstructure:"relay_state"          toml:"relay_state"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds" toml:"http_timeout_seconds"`
	UserPageSize       int    `mapstructure:"user_page_size"       toml:"user_page_size"`
	GroupPageSize      int    `mapstructure:"group_page_size"      toml:"group_page_size"`
}

// DefaultConfigDir returns the default config directory path
// (~/.config/awssso). If AWSSSO_CONFIG_DIR is set, that value is used
// instead.
func DefaultConfigDir() string {
	if dir := os.Getenv("AWSSSO_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "awssso")
	}
	return filepath.Join(home, ".config", "awssso")
}

// Load reads configDir/config.toml and returns a Config with defaults
// applied for any missing keys. A missing file returns all defaults
// without error.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("region", DefaultRegion)
	v.SetDefault("api_base", "")
	v.SetDefault("list_base", DefaultListBase)
	v.SetDefault("relay_state", DefaultRelayState)
	v.SetDefault("http_timeout_seconds", defaultHTTPTimeoutSeconds)
	v.SetDefault("user_page_size", defaultUserPageSize)
	v.SetDefault("group_page_size", defaultGroupPageSize)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
