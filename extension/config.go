package extension

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/types"
)

// Config holds the Festival extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.festival" or "festival" keys).
type Config struct {
	// Owner is the organiser address in hex. Required.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`

	// UnitPrice is the primary-sale price per unit in FTK (default: "10").
	UnitPrice string `json:"unit_price" mapstructure:"unit_price" yaml:"unit_price"`

	// MaxPerTransaction caps the units one public mint may request (default: 5).
	MaxPerTransaction uint64 `json:"max_per_transaction" mapstructure:"max_per_transaction" yaml:"max_per_transaction"`

	// MaxPerActor caps the units one address may ever mint (default: 5).
	MaxPerActor uint64 `json:"max_per_actor" mapstructure:"max_per_actor" yaml:"max_per_actor"`

	// InitialSupply is the FTK minted to the owner at genesis (default: "1000000").
	InitialSupply string `json:"initial_supply" mapstructure:"initial_supply" yaml:"initial_supply"`

	// FeeRecipient receives marketplace fees. Empty means the owner.
	FeeRecipient string `json:"fee_recipient" mapstructure:"fee_recipient" yaml:"fee_recipient"`

	// BadgerDir, when set, persists state in a Badger database at that
	// path instead of memory. Ignored when a store is passed via WithStore.
	BadgerDir string `json:"badger_dir" mapstructure:"badger_dir" yaml:"badger_dir"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and builds the
	// matching store for its driver (pg, sqlite or mongo). When empty and
	// WithGroveDatabase was called, the default (unnamed) DB is used.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UnitPrice:         sale.DefaultUnitPrice.FormatFTK(),
		MaxPerTransaction: sale.DefaultMaxPerTransaction,
		MaxPerActor:       sale.DefaultMaxPerActor,
		InitialSupply:     "1000000",
	}
}

// parsed is the typed form of Config.
type parsed struct {
	owner         common.Address
	feeRecipient  common.Address
	sale          sale.Config
	initialSupply types.Amount
}

// parse validates c and converts it to engine values.
func (c Config) parse() (*parsed, error) {
	if !common.IsHexAddress(c.Owner) {
		return nil, fmt.Errorf("festival: config owner %q: %w", c.Owner, types.ErrInvalidAddress)
	}
	p := &parsed{owner: common.HexToAddress(c.Owner)}

	if c.FeeRecipient != "" {
		if !common.IsHexAddress(c.FeeRecipient) {
			return nil, fmt.Errorf("festival: config fee_recipient %q: %w", c.FeeRecipient, types.ErrInvalidAddress)
		}
		p.feeRecipient = common.HexToAddress(c.FeeRecipient)
	}

	price, err := types.ParseFTK(c.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("festival: config unit_price: %w", err)
	}
	supply, err := types.ParseFTK(c.InitialSupply)
	if err != nil {
		return nil, fmt.Errorf("festival: config initial_supply: %w", err)
	}
	p.initialSupply = supply

	p.sale = sale.Config{
		UnitPrice:         price,
		MaxPerTransaction: c.MaxPerTransaction,
		MaxPerActor:       c.MaxPerActor,
		Beneficiary:       p.owner,
	}
	if err := p.sale.Validate(); err != nil {
		return nil, fmt.Errorf("festival: config sale: %w", err)
	}
	return p, nil
}
