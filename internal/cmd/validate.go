package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stubdex/stubdex/catalog"
)

type Validate struct {
	Root   string `arg:"" optional:"" default:"." help:"Root directory of the .pyi stub tree"`
	Index  string `help:"Validate the catalog stored in this index database" env:"STUBDEX_INDEX"`
	Format string `help:"Report format" enum:"text,json" default:"text"`
}

// Run is called by Kong when the validate command is executed. It exits
// non-zero when the catalog has findings so CI scripts can gate on it.
func (v *Validate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, v.Root, v.Index)
	if err != nil {
		return err
	}

	findings := cat.Validate()
	if v.Format == "json" {
		if findings == nil {
			findings = []catalog.Finding{}
		}
		if err := printJSON(findings); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			fmt.Println(f.String())
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("catalog has %d validation finding(s)", len(findings))
	}
	if v.Format == "text" {
		logger.Info("Catalog is valid", "types", cat.Len())
	}
	return nil
}
