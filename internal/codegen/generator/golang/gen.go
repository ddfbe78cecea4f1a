// Package golang emits Go interface bindings for a catalog: one
// interface per declaration, embedding its supertype interfaces, with a
// getter per attribute and a method per signature.
package golang

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/codegen/common"
	"github.com/stubdex/stubdex/internal/codegen/generator"
	"github.com/stubdex/stubdex/internal/codegen/meta"
)

// packageName is the package the generated files declare. "go" itself
// is a keyword, so the backend registers as "go" but emits "bindings".
const packageName = "bindings"

func init() {
	generator.Register("go", Generate)
}

func Generate(logger *slog.Logger, outputDir string, md *meta.Metadata) error {
	pkgDir := filepath.Join(outputDir, packageName)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return fmt.Errorf("create package directory %s: %w", pkgDir, err)
	}

	version, err := common.GetVersion()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	if err := generateDoc(pkgDir, version, md); err != nil {
		return err
	}

	err = md.Catalog.Walk(func(d *catalog.Declaration) error {
		return generateDecl(logger, pkgDir, d)
	})
	if err != nil {
		return err
	}

	if err := common.GenerateLicense(logger, outputDir); err != nil {
		return err
	}
	if err := common.GenerateReadme(logger, outputDir); err != nil {
		return err
	}

	logger.Info("Generated Go bindings", "dir", pkgDir, "types", md.Catalog.Len())
	return nil
}
