// Package config provides Viper-based configuration loading for wastehunter.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/wastehunter/internal/game/formula"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// StoreConfig selects the entity document store.
type StoreConfig struct {
	// Backend is one of "memory", "postgres", "redis".
	Backend string `mapstructure:"backend"`
	// SeedDir, when set, is a directory of YAML sheets loaded into the memory store at startup.
	SeedDir string `mapstructure:"seed_dir"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// KeyPrefix namespaces every key written by the store.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// AutofireConfig holds the AP costs of automatic weapons.
type AutofireConfig struct {
	// FiredCost is the AP cost after an automatic weapon has fired.
	FiredCost int `mapstructure:"fired_cost"`
	// RearmCost is the AP cost restored when automatic fire is re-armed.
	RearmCost int `mapstructure:"rearm_cost"`
}

// RulesConfig holds the tunable parts of the game rules.
type RulesConfig struct {
	// PoolPolicy decides what a non-positive dice pool becomes: "zero" or "min_one".
	PoolPolicy string `mapstructure:"pool_policy"`
	// ChargeWarnings override the charge depletion thresholds; empty uses the defaults.
	ChargeWarnings  []ledger.Threshold `mapstructure:"charge_warnings"`
	Autofire        AutofireConfig     `mapstructure:"autofire"`
	ReloadSurcharge int                `mapstructure:"reload_surcharge"`
	// ActionsFile is an optional YAML action table merged over the built-ins.
	ActionsFile string `mapstructure:"actions_file"`
	// CatalogDir is the item catalog directory used by import-content.
	CatalogDir string `mapstructure:"catalog_dir"`
	// ScriptDir holds circumstance scripts; empty disables scripting.
	ScriptDir        string `mapstructure:"script_dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// Policy returns the parsed pool policy.
//
// Precondition: the config has been validated.
func (r RulesConfig) Policy() formula.PoolPolicy {
	p, err := formula.ParsePolicy(r.PoolPolicy)
	if err != nil {
		return formula.PolicyZero
	}
	return p
}

// Ledger returns a ledger warning at the configured thresholds.
func (r RulesConfig) Ledger() ledger.Ledger {
	return ledger.New(r.ChargeWarnings...)
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

// Validate checks all configuration invariants. Connection settings are only
// checked for the selected store backend.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStore(c.Store); err != nil {
		errs = append(errs, err.Error())
	}
	switch c.Store.Backend {
	case BackendPostgres:
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	case BackendRedis:
		if err := validateRedis(c.Redis); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateStore(s StoreConfig) error {
	switch s.Backend {
	case BackendMemory, BackendPostgres, BackendRedis:
		return nil
	default:
		return fmt.Errorf("store.backend must be one of [memory, postgres, redis], got %q", s.Backend)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Addr == "" {
		errs = append(errs, "redis.addr must not be empty")
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if _, err := formula.ParsePolicy(r.PoolPolicy); err != nil {
		errs = append(errs, fmt.Sprintf("rules.pool_policy must be one of [zero, min_one], got %q", r.PoolPolicy))
	}
	// A zero cost selects the dispatcher default and cannot be configured.
	if r.Autofire.FiredCost < 1 {
		errs = append(errs, fmt.Sprintf("rules.autofire.fired_cost must be >= 1 (0 is not a configurable cost), got %d", r.Autofire.FiredCost))
	}
	if r.Autofire.RearmCost < 1 {
		errs = append(errs, fmt.Sprintf("rules.autofire.rearm_cost must be >= 1 (0 is not a configurable cost), got %d", r.Autofire.RearmCost))
	}
	if r.ReloadSurcharge < 1 {
		errs = append(errs, fmt.Sprintf("rules.reload_surcharge must be >= 1 (0 is not a configurable cost), got %d", r.ReloadSurcharge))
	}
	if r.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("rules.instruction_limit must be >= 0, got %d", r.InstructionLimit))
	}
	for i, t := range r.ChargeWarnings {
		if t.Message == "" {
			errs = append(errs, fmt.Sprintf("rules.charge_warnings[%d].message must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with WASTEHUNTER_ prefix
	v.SetEnvPrefix("WASTEHUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("store.backend", BackendMemory)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "wastehunter")
	v.SetDefault("database.password", "wastehunter")
	v.SetDefault("database.name", "wastehunter")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "wastehunter:")

	v.SetDefault("rules.pool_policy", string(formula.PolicyZero))
	v.SetDefault("rules.autofire.fired_cost", 2)
	v.SetDefault("rules.autofire.rearm_cost", 4)
	v.SetDefault("rules.reload_surcharge", 2)
	v.SetDefault("rules.catalog_dir", "content/items")
	v.SetDefault("rules.instruction_limit", 100000)
}
