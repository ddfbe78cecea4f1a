package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stubdex/stubdex/internal/index"
	"github.com/stubdex/stubdex/pyi"
)

type Scan struct {
	Root  string `arg:"" optional:"" default:"." help:"Root directory of the .pyi stub tree"`
	Index string `help:"Persistent index database to update" env:"STUBDEX_INDEX"`
	Tool  string `help:"Stub generator name recorded in the snapshot" env:"STUBDEX_TOOL"`
}

// Run is called by Kong when the scan command is executed.
func (s *Scan) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if s.Index != "" {
		store, err := index.Open(s.Index)
		if err != nil {
			return err
		}
		defer store.Close()
		snap, changed, err := store.Refresh(ctx, s.Root, s.Tool)
		if err != nil {
			return err
		}
		logger.Info("Scan complete",
			"root", s.Root,
			"index", s.Index,
			"snapshot", snap.ID,
			"types", snap.Catalog.Len(),
			"files", len(snap.Files),
			"parsed", len(changed),
			"took", time.Since(start))
		return nil
	}

	res, err := pyi.ScanDir(ctx, s.Root)
	if err != nil {
		return err
	}
	logger.Info("Scan complete",
		"root", s.Root,
		"types", res.Catalog.Len(),
		"files", len(res.Files),
		"took", time.Since(start))
	return nil
}
