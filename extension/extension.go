// Package extension provides the Forge extension adapter for Festival.
//
// It implements the forge.Extension interface to integrate Festival
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.festival" or "festival" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/festival"
	"github.com/xraph/festival/store"
	"github.com/xraph/festival/store/badger"
	"github.com/xraph/festival/store/memory"
	"github.com/xraph/festival/store/mongo"
	"github.com/xraph/festival/store/postgres"
	"github.com/xraph/festival/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "festival"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Festival ticket ledger and resale marketplace"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Festival as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config       Config
	engine       *festival.Festival
	store        store.Store
	festivalOpts []festival.Option
	useGrove     bool
}

// New creates a new Festival Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Festival instance.
// This is nil until Register is called.
func (e *Extension) Engine() *festival.Festival { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the festival engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	p, err := e.config.parse()
	if err != nil {
		return err
	}

	if e.store == nil {
		s, err := e.openStore(fapp.Container())
		if err != nil {
			return err
		}
		e.store = s
	}

	eng := festival.New(e.store, p.owner, e.buildFestivalOpts(p)...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*festival.Festival, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("festival: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(ctx context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(ctx); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("festival: store not initialized")
	}
	return e.store.Ping(ctx)
}

func (e *Extension) openStore(c vessel.Vessel) (store.Store, error) {
	if e.useGrove || e.config.GroveDatabase != "" {
		db, err := resolveGroveDB(c, e.config.GroveDatabase)
		if err != nil {
			return nil, err
		}
		return groveStore(db)
	}
	if e.config.BadgerDir == "" {
		return memory.New(), nil
	}
	s, err := badger.Open(e.config.BadgerDir, nil)
	if err != nil {
		return nil, fmt.Errorf("festival: open badger store: %w", err)
	}
	return s, nil
}

// resolveGroveDB looks up the named grove.DB, or the unnamed one when
// name is empty.
func resolveGroveDB(c vessel.Vessel, name string) (*grove.DB, error) {
	var (
		db  *grove.DB
		err error
	)
	if name == "" {
		db, err = vessel.Inject[*grove.DB](c)
	} else {
		db, err = vessel.InjectNamed[*grove.DB](c, name)
	}
	if err != nil {
		return nil, fmt.Errorf("festival: resolve grove database %q: %w", name, err)
	}
	return db, nil
}

// groveStore builds the store matching db's driver.
func groveStore(db *grove.DB) (store.Store, error) {
	switch drv := db.Driver().Name(); drv {
	case "pg":
		return postgres.New(db), nil
	case "sqlite":
		return sqlite.New(db), nil
	case "mongo":
		return mongo.New(db), nil
	default:
		return nil, fmt.Errorf("festival: unsupported grove driver %q", drv)
	}
}

// buildFestivalOpts constructs festival.Option values from the resolved config.
func (e *Extension) buildFestivalOpts(p *parsed) []festival.Option {
	opts := make([]festival.Option, 0, len(e.festivalOpts)+4)

	opts = append(opts,
		festival.WithSaleConfig(p.sale),
		festival.WithInitialSupply(p.initialSupply),
		festival.WithMigrate(!e.config.DisableMigrate),
	)
	if p.feeRecipient != (common.Address{}) {
		opts = append(opts, festival.WithFeeRecipient(p.feeRecipient))
	}

	// Pass-through options last so they win.
	opts = append(opts, e.festivalOpts...)

	return opts
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("festival: configuration is required but not found in config files; " +
				"ensure 'extensions.festival' or 'festival' key exists in your config")
		}

		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("festival: configuration loaded",
		forge.F("owner", e.config.Owner),
		forge.F("unit_price", e.config.UnitPrice),
		forge.F("max_per_transaction", e.config.MaxPerTransaction),
		forge.F("max_per_actor", e.config.MaxPerActor),
		forge.F("badger_dir", e.config.BadgerDir),
		forge.F("grove_database", e.config.GroveDatabase),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.festival", "festival"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("festival: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("festival: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.UnitPrice == "" {
		cfg.UnitPrice = defaults.UnitPrice
	}
	if cfg.MaxPerTransaction == 0 {
		cfg.MaxPerTransaction = defaults.MaxPerTransaction
	}
	if cfg.MaxPerActor == 0 {
		cfg.MaxPerActor = defaults.MaxPerActor
	}
	if cfg.InitialSupply == "" {
		cfg.InitialSupply = defaults.InitialSupply
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.Owner == "" {
		yamlConfig.Owner = programmaticConfig.Owner
	}
	if yamlConfig.FeeRecipient == "" {
		yamlConfig.FeeRecipient = programmaticConfig.FeeRecipient
	}
	if yamlConfig.BadgerDir == "" {
		yamlConfig.BadgerDir = programmaticConfig.BadgerDir
	}
	if yamlConfig.GroveDatabase == "" {
		yamlConfig.GroveDatabase = programmaticConfig.GroveDatabase
	}
	if yamlConfig.UnitPrice == "" {
		yamlConfig.UnitPrice = programmaticConfig.UnitPrice
	}
	if yamlConfig.InitialSupply == "" {
		yamlConfig.InitialSupply = programmaticConfig.InitialSupply
	}
	if yamlConfig.MaxPerTransaction == 0 {
		yamlConfig.MaxPerTransaction = programmaticConfig.MaxPerTransaction
	}
	if yamlConfig.MaxPerActor == 0 {
		yamlConfig.MaxPerActor = programmaticConfig.MaxPerActor
	}

	return mergeWithDefaults(yamlConfig)
}
