package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	AuthSecret  string   `mapstructure:"AUTH_SECRET"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Reminder engine intervals. The defaults mirror the product behavior:
	// 1s countdown ticks, re-alert every 60s while a prompt is unanswered,
	// prompts auto-dismiss after 30s, advisory banners last 30s.
	TickInterval       time.Duration `mapstructure:"TICK_INTERVAL"`
	EscalationInterval time.Duration `mapstructure:"ESCALATION_INTERVAL"`
	PromptTimeout      time.Duration `mapstructure:"PROMPT_TIMEOUT"`
	AdviceTimeout      time.Duration `mapstructure:"ADVICE_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TICK_INTERVAL", "1s")
	v.SetDefault("ESCALATION_INTERVAL", "60s")
	v.SetDefault("PROMPT_TIMEOUT", "30s")
	v.SetDefault("ADVICE_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("TICK_INTERVAL")
	v.BindEnv("ESCALATION_INTERVAL")
	v.BindEnv("PROMPT_TIMEOUT")
	v.BindEnv("ADVICE_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// mode AUTH_SECRET must be set so bearer tokens are actually verified, and the
// engine intervals must be positive (a zero tick interval would spin).
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required when ENV=%q", c.Env)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.EscalationInterval <= 0 {
		return fmt.Errorf("ESCALATION_INTERVAL must be positive, got %s", c.EscalationInterval)
	}
	if c.PromptTimeout <= 0 {
		return fmt.Errorf("PROMPT_TIMEOUT must be positive, got %s", c.PromptTimeout)
	}
	if c.AdviceTimeout <= 0 {
		return fmt.Errorf("ADVICE_TIMEOUT must be positive, got %s", c.AdviceTimeout)
	}
	return nil
}
