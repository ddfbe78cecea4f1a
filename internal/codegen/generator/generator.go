// Package generator dispatches catalog binding generation to language
// backends. Backends live in subpackages and register themselves by
// name from init(); internal/registry imports them all so a blank
// import of that package wires up every backend.
package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/stubdex/stubdex/internal/codegen/meta"
)

// LanguageGenerator emits one language's bindings for a catalog into
// outputDir.
type LanguageGenerator func(logger *slog.Logger, outputDir string, md *meta.Metadata) error

var (
	backends   = make(map[string]LanguageGenerator)
	backendsMu sync.RWMutex
)

// Register registers a language backend for dispatch by name. Called
// from backend package init() functions.
func Register(name string, gen LanguageGenerator) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = gen
}

// Languages returns the registered backend names, sorted.
func Languages() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) LanguageGenerator {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backends[name]
}

type Generator struct {
	outputDir string
	logger    *slog.Logger
}

func New(outputDir string, logger *slog.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		logger:    logger,
	}
}

// GenAll runs every registered backend against the catalog.
func (g *Generator) GenAll(md *meta.Metadata) error {
	for _, lang := range Languages() {
		if err := g.GenerateLang(md, lang); err != nil {
			return fmt.Errorf("generate %s bindings: %w", lang, err)
		}
	}
	return nil
}

// GenerateLang runs the named backend against the catalog, writing
// into <outputDir>/<lang>.
func (g *Generator) GenerateLang(md *meta.Metadata, lang string) error {
	gen := lookup(lang)
	if gen == nil {
		return fmt.Errorf("unsupported language '%s' (supported: %v)", lang, Languages())
	}

	g.logger.Info("Generating bindings", "language", lang, "types", md.Catalog.Len())

	outputPath := filepath.Join(g.outputDir, lang)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create %s output directory: %w", lang, err)
	}

	if err := gen(g.logger, outputPath, md); err != nil {
		return err
	}

	g.logger.Info("Binding generation complete", "language", lang, "output", outputPath)
	return nil
}
