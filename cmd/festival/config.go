package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/types"
)

// Config is the CLI configuration file.
type Config struct {
	Owner         string      `yaml:"owner"`
	FeeRecipient  string      `yaml:"fee_recipient"`
	InitialSupply string      `yaml:"initial_supply"`
	LogLevel      string      `yaml:"log_level"`
	Store         StoreConfig `yaml:"store"`
	Sale          SaleConfig  `yaml:"sale"`
}

// StoreConfig selects and configures the state backend.
type StoreConfig struct {
	// Driver is one of memory, badger, redis, sqlite, postgres or mongo.
	Driver string `yaml:"driver"`
	Dir    string `yaml:"dir"`
	// DSN is the database file for sqlite and the connection string for
	// postgres and mongo. Mongo requires a replica set.
	DSN      string `yaml:"dsn"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SaleConfig holds the primary-sale parameters written at genesis.
type SaleConfig struct {
	UnitPrice         string `yaml:"unit_price"`
	MaxPerTransaction uint64 `yaml:"max_per_transaction"`
	MaxPerActor       uint64 `yaml:"max_per_actor"`
	Beneficiary       string `yaml:"beneficiary"`
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates. An empty
// path yields the defaults alone.
func LoadAndValidate(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.InitialSupply == "" {
		c.InitialSupply = "1000000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "badger"
	}
	if c.Store.Driver == "badger" && c.Store.Dir == "" {
		c.Store.Dir = ".festival"
	}
	if c.Store.Driver == "redis" && c.Store.Addr == "" {
		c.Store.Addr = "localhost:6379"
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		c.Store.DSN = "festival.db"
	}
	if c.Sale.UnitPrice == "" {
		c.Sale.UnitPrice = sale.DefaultUnitPrice.FormatFTK()
	}
	if c.Sale.MaxPerTransaction == 0 {
		c.Sale.MaxPerTransaction = sale.DefaultMaxPerTransaction
	}
	if c.Sale.MaxPerActor == 0 {
		c.Sale.MaxPerActor = sale.DefaultMaxPerActor
	}
}

// Validate checks required fields and value formats.
func (c *Config) Validate() error {
	var errs []error

	if !common.IsHexAddress(c.Owner) {
		errs = append(errs, fmt.Errorf("owner: %q is not a hex address", c.Owner))
	}
	for name, v := range map[string]string{"fee_recipient": c.FeeRecipient, "sale.beneficiary": c.Sale.Beneficiary} {
		if v != "" && !common.IsHexAddress(v) {
			errs = append(errs, fmt.Errorf("%s: %q is not a hex address", name, v))
		}
	}
	if _, err := types.ParseFTK(c.Sale.UnitPrice); err != nil {
		errs = append(errs, fmt.Errorf("sale.unit_price: %w", err))
	}
	if _, err := types.ParseFTK(c.InitialSupply); err != nil {
		errs = append(errs, fmt.Errorf("initial_supply: %w", err))
	}
	switch c.Store.Driver {
	case "memory", "badger", "redis", "sqlite":
	case "postgres", "mongo":
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn: required for driver %q", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SaleConfig converts the sale section. Call after Validate.
func (c *Config) SaleConfig() sale.Config {
	price, _ := types.ParseFTK(c.Sale.UnitPrice)
	return sale.Config{
		UnitPrice:         price,
		MaxPerTransaction: c.Sale.MaxPerTransaction,
		MaxPerActor:       c.Sale.MaxPerActor,
		Beneficiary:       common.HexToAddress(c.Sale.Beneficiary),
	}
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
