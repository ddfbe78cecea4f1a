package hub

import "time"

// ServiceConfig represents the catalog service configuration.
type ServiceConfig struct {
	Root          string        `help:"Root directory of the .pyi stub tree to index" default:"." env:"STUBDEX_ROOT"`
	Index         string        `help:"Path of the persistent index database; empty keeps the catalog in memory" env:"STUBDEX_INDEX"`
	Tool          string        `help:"Name of the stub generator recorded in snapshots" env:"STUBDEX_TOOL"`
	Watch         bool          `help:"Rescan automatically when stub files change" default:"true" env:"STUBDEX_WATCH"`
	WatchDebounce time.Duration `help:"Quiet period between a stub change and the rescan it triggers" default:"500ms" env:"STUBDEX_WATCH_DEBOUNCE"`
}
