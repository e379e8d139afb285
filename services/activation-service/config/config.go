package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBHost       string        `mapstructure:"DB_HOST"`
	DBPort       string        `mapstructure:"DB_PORT"`
	DBUser       string        `mapstructure:"DB_USER"`
	DBPassword   string        `mapstructure:"DB_PASSWORD"`
	DBName       string        `mapstructure:"DB_NAME"`
	RedisAddr    string        `mapstructure:"REDIS_ADDR"`
	GRPCPort     string        `mapstructure:"GRPC_PORT"`
	MetricsPort  string        `mapstructure:"METRICS_PORT"`
	StoreDriver  string        `mapstructure:"STORE_DRIVER"`
	AuditDriver  string        `mapstructure:"AUDIT_DRIVER"`
	StoreTimeout time.Duration `mapstructure:"STORE_TIMEOUT"`
	AuditTimeout time.Duration `mapstructure:"AUDIT_TIMEOUT"`
	MaxDevices   int           `mapstructure:"MAX_DEVICES"`
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
}

// Drivers accepted by STORE_DRIVER and AUDIT_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("GRPC_PORT", ":50051")
	v.SetDefault("METRICS_PORT", ":9090")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("AUDIT_DRIVER", DriverPostgres)
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("AUDIT_TIMEOUT", "3s")
	v.SetDefault("MAX_DEVICES", 2)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	// Unmarshal only sees env vars that are bound explicitly.
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"REDIS_ADDR", "GRPC_PORT", "METRICS_PORT", "STORE_DRIVER", "AUDIT_DRIVER",
		"STORE_TIMEOUT", "AUDIT_TIMEOUT", "MAX_DEVICES", "LOG_LEVEL",
	} {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	// app.env is optional; the environment alone is enough.
	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

func (c Config) UsesPostgres() bool {
	return c.StoreDriver == DriverPostgres || c.AuditDriver == DriverPostgres
}

func (c Config) UsesRedis() bool {
	return c.StoreDriver == DriverRedis || c.AuditDriver == DriverRedis
}
