package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port            int           `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DatabaseName    string        `mapstructure:"DATABASE_NAME"`
	StoreDriver     string        `mapstructure:"STORE_DRIVER"`
	StoreTimeout    time.Duration `mapstructure:"STORE_TIMEOUT"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	GRPCPort        int           `mapstructure:"GRPC_PORT"`
	DiagnosticsPort int           `mapstructure:"DIAGNOSTICS_PORT"`
	OTLPEndpoint    string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
}

// SetDefaults registers every key on v so environment variables of the same
// name are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_NAME", "ecommerce")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("STORE_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("GRPC_PORT", 9090)
	v.SetDefault("DIAGNOSTICS_PORT", 0)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from the environment and, when path is set, from
// a YAML file. Environment variables win over the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

// Addr is the public listen address; the API binds all interfaces.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
