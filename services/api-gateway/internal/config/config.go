package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	ActivationSvcURL string        `mapstructure:"ACTIVATION_SVC_URL"`
	AllowedOrigins   string        `mapstructure:"ALLOWED_ORIGINS"`
	TrustedProxies   string        `mapstructure:"TRUSTED_PROXIES"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	APIKeyHash       string        `mapstructure:"API_KEY_HASH"`
	SupportJWTSecret string        `mapstructure:"SUPPORT_JWT_SECRET"`
	RateLimit        int           `mapstructure:"RATE_LIMIT"`
	RateWindow       time.Duration `mapstructure:"RATE_WINDOW"`
	RPCTimeout       time.Duration `mapstructure:"RPC_TIMEOUT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("PORT", ":8080")
	v.SetDefault("ACTIVATION_SVC_URL", "localhost:50051")
	v.SetDefault("RATE_LIMIT", 30)
	v.SetDefault("RATE_WINDOW", "1m")
	// Must exceed the activation-service worst case (two STORE_TIMEOUT plus
	// AUDIT_TIMEOUT, 13s at its defaults) or a committed bind is reported as 502.
	v.SetDefault("RPC_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	for _, key := range []string{
		"PORT", "ACTIVATION_SVC_URL", "ALLOWED_ORIGINS", "TRUSTED_PROXIES",
		"REDIS_ADDR", "API_KEY_HASH", "SUPPORT_JWT_SECRET",
		"RATE_LIMIT", "RATE_WINDOW", "RPC_TIMEOUT", "LOG_LEVEL",
	} {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// Proxies splits TRUSTED_PROXIES on commas. Nil means no proxy is trusted.
func (c Config) Proxies() []string {
	return splitList(c.TrustedProxies)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
