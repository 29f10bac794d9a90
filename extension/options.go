package extension

import (
	"github.com/xraph/festival"
	"github.com/xraph/festival/plugin"
	"github.com/xraph/festival/store"
)

// Option configures the Festival Forge extension.
type Option func(*Extension)

// WithStore sets the store for the festival engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithFestivalOption passes a festival.Option through to the underlying engine.
func WithFestivalOption(opt festival.Option) Option {
	return func(e *Extension) {
		e.festivalOpts = append(e.festivalOpts, opt)
	}
}

// WithPlugin registers a festival plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.festivalOpts = append(e.festivalOpts, festival.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithOwner sets the organiser address.
func WithOwner(hex string) Option {
	return func(e *Extension) { e.config.Owner = hex }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithBadgerDir persists state in a Badger database at dir.
func WithBadgerDir(dir string) Option {
	return func(e *Extension) { e.config.BadgerDir = dir }
}

// WithGroveDatabase resolves a grove.DB from the DI container and builds
// the store for its driver. Pass an empty string to use the default
// (unnamed) grove.DB.
func WithGroveDatabase(name string) Option {
	return func(e *Extension) {
		e.config.GroveDatabase = name
		e.useGrove = true
	}
}
