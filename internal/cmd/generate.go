package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stubdex/stubdex/internal/codegen/generator"
	"github.com/stubdex/stubdex/internal/codegen/meta"
)

type Generate struct {
	Output string `help:"Output directory for generated bindings" default:"./bindings" env:"STUBDEX_GENERATE_OUTPUT"`
	Lang   string `help:"Target language: go, typescript, jsonschema, or 'all'" default:"all" enum:"go,typescript,jsonschema,all" env:"STUBDEX_GENERATE_LANG"`
	Root   string `help:"Root directory of the .pyi stub tree" default:"." env:"STUBDEX_ROOT"`
	Index  string `help:"Read the catalog from this index database" env:"STUBDEX_INDEX"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting stubdex code generation", "output", g.Output, "lang", g.Lang)

	cat, err := loadCatalog(ctx, g.Root, g.Index)
	if err != nil {
		return err
	}
	source := g.Root
	if g.Index != "" {
		source = g.Index
	}
	md := &meta.Metadata{Catalog: cat, SourceDir: source}

	gen := generator.New(g.Output, logger)
	if g.Lang == "all" {
		return gen.GenAll(md)
	}
	return gen.GenerateLang(md, g.Lang)
}
