package meta

import "github.com/stubdex/stubdex/catalog"

// Metadata holds everything a language backend needs to emit bindings.
// Shared between the generator orchestrator and the language backends.
type Metadata struct {
	Catalog *catalog.Catalog
	// SourceDir is the stub tree or index the catalog was loaded from,
	// recorded in generated headers for traceability.
	SourceDir string
}
