package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stubdex/stubdex/internal/bundle"
	"github.com/stubdex/stubdex/internal/index"
	"github.com/stubdex/stubdex/pyi"
)

// Bundle groups bundle-related subcommands.
type Bundle struct {
	Export BundleExport `cmd:"" help:"Write the catalog to a portable bundle file"`
	Import BundleImport `cmd:"" help:"Load a bundle file into an index database"`
}

// BundleExport packs the catalog into a single compressed file that can
// be shipped to machines without the stub tree.
type BundleExport struct {
	Output string `arg:"" help:"Bundle file to write"`
	Root   string `help:"Root directory of the .pyi stub tree" default:"." env:"STUBDEX_ROOT"`
	Index  string `help:"Read the catalog from this index database" env:"STUBDEX_INDEX"`
	Tool   string `help:"Stub generator name recorded in the manifest" env:"STUBDEX_TOOL"`
}

// Run is called by Kong when the bundle export command is executed.
func (b *BundleExport) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, b.Root, b.Index)
	if err != nil {
		return err
	}
	mf, err := bundle.WriteFile(b.Output, cat, b.Tool)
	if err != nil {
		return err
	}
	logger.Info("Bundle written",
		"path", b.Output,
		"id", mf.ID,
		"types", mf.Types,
		"digest", mf.Digest)
	return nil
}

// BundleImport unpacks a bundle into an index database so offline
// commands and the server can use the catalog without the stub tree.
type BundleImport struct {
	Input string `arg:"" help:"Bundle file to read"`
	Index string `required:"" help:"Index database to load the bundle into" env:"STUBDEX_INDEX"`
}

// Run is called by Kong when the bundle import command is executed.
func (b *BundleImport) Run(logger *slog.Logger) error {
	cat, mf, err := bundle.ReadFile(b.Input)
	if err != nil {
		return err
	}
	store, err := index.Open(b.Index)
	if err != nil {
		return err
	}
	defer store.Close()
	snap, err := store.Save(&pyi.Result{Catalog: cat}, mf.Tool)
	if err != nil {
		return err
	}
	logger.Info("Bundle imported",
		"path", b.Input,
		"index", b.Index,
		"snapshot", snap.ID,
		"types", mf.Types)
	return nil
}
