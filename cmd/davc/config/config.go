package config

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

const envPrefix = "DAVC"

type Config struct {
	Server      string      `mapstructure:"server"`
	User        string      `mapstructure:"user"`
	Password    string      `mapstructure:"password" json:"-"`
	UserAgent   string      `mapstructure:"user_agent" default:"davc/1.0"`
	Timeout     int64       `mapstructure:"timeout" default:"30"`
	MaxBodySize int64       `mapstructure:"max_body_size" default:"0"`
	LogLevel    string      `mapstructure:"log_level" default:"info"`
	Namespaces  []Namespace `mapstructure:"namespaces"`
}

type Namespace struct {
	URI    string `mapstructure:"uri"`
	Prefix string `mapstructure:"prefix"`
}

var envKeys = []string{"server", "user", "password", "user_agent", "timeout", "max_body_size", "log_level"}

// Parse loads f (json/yaml/toml by extension) and overlays DAVC_* environment
// variables. An empty f reads the environment only.
func Parse(f string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env:%w", err)
		}
	}
	if len(f) > 0 {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read file:%w", err)
		}
	}
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("set defaults:%w", err)
	}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal file:%w", err)
	}
	return c, nil
}
