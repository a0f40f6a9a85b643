// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	PostgresURL  string `mapstructure:"postgres_url"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`

	Owner    string `mapstructure:"owner"`
	Treasury string `mapstructure:"treasury"`
	Venue    string `mapstructure:"venue"`

	PlatformFeeBp uint64 `mapstructure:"platform_fee_bp"`
	CreatorFeeBp  uint64 `mapstructure:"creator_fee_bp"`

	// Decimal strings: amounts can exceed uint64.
	CreateFee       string `mapstructure:"create_fee"`
	RaiseTarget     string `mapstructure:"raise_target"`
	MaxCurveSupply  string `mapstructure:"max_curve_supply"`
	VenueAllocation string `mapstructure:"venue_allocation"`
	InitialPrice    string `mapstructure:"initial_price"`
	Slope           string `mapstructure:"slope"`

	EmergencyCooldownHours int `mapstructure:"emergency_cooldown_hours"`
	TreasuryDelayHours     int `mapstructure:"treasury_delay_hours"`

	EventBufferSize int `mapstructure:"event_buffer_size"`
}

const (
	DefaultListenAddr        = ":8080"
	DefaultPlatformFeeBp     = 100
	DefaultCreatorFeeBp      = 25
	DefaultEmergencyCooldown = 24
	DefaultTreasuryDelay     = 48
	DefaultEventBufferSize   = 256
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":              DefaultListenAddr,
		"platform_fee_bp":          DefaultPlatformFeeBp,
		"creator_fee_bp":           DefaultCreatorFeeBp,
		"emergency_cooldown_hours": DefaultEmergencyCooldown,
		"treasury_delay_hours":     DefaultTreasuryDelay,
		"event_buffer_size":        DefaultEventBufferSize,
		"log_file":                 "launchpad.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.Owner == "" {
		return errors.New("missing owner in configuration")
	}
	if cfg.Treasury == "" {
		return errors.New("missing treasury in configuration")
	}
	if cfg.Venue == "" {
		return errors.New("missing venue in configuration")
	}
	if cfg.PlatformFeeBp+cfg.CreatorFeeBp > 10000 {
		return errors.New("platform_fee_bp + creator_fee_bp exceeds 10000")
	}
	if cfg.EmergencyCooldownHours <= 0 {
		return errors.New("invalid emergency_cooldown_hours")
	}
	if cfg.TreasuryDelayHours <= 0 {
		return errors.New("invalid treasury_delay_hours")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("invalid event_buffer_size")
	}
	for _, field := range []struct {
		name, value string
	}{
		{"create_fee", cfg.CreateFee},
		{"raise_target", cfg.RaiseTarget},
		{"max_curve_supply", cfg.MaxCurveSupply},
		{"venue_allocation", cfg.VenueAllocation},
		{"initial_price", cfg.InitialPrice},
		{"slope", cfg.Slope},
	} {
		if _, err := ParseAmount(field.value); err != nil {
			return fmt.Errorf("invalid %s: %w", field.name, err)
		}
	}
	return nil
}

// ParseAmount parses a non-empty decimal string into a 256-bit amount.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.New("empty amount")
	}
	return uint256.FromDecimal(s)
}

// MustAmount is for values already checked by validateConfig.
func MustAmount(s string) *uint256.Int {
	amount, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return amount
}

// EmergencyCooldown returns the cool-down as a duration.
func (c *Config) EmergencyCooldown() time.Duration {
	return time.Duration(c.EmergencyCooldownHours) * time.Hour
}

// TreasuryDelay returns the governance delay as a duration.
func (c *Config) TreasuryDelay() time.Duration {
	return time.Duration(c.TreasuryDelayHours) * time.Hour
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if env := v.GetString("POSTGRES_URL"); env != "" {
		cfg.PostgresURL = env
	}
	if env := v.GetString("LISTEN_ADDR"); env != "" {
		cfg.ListenAddr = env
	}
}
