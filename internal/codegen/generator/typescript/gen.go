// Package typescript emits a declaration-only npm package for a
// catalog: one exported interface per declaration in index.d.ts.
package typescript

import (
	"fmt"
	"log/slog"

	"github.com/stubdex/stubdex/internal/codegen/common"
	"github.com/stubdex/stubdex/internal/codegen/generator"
	"github.com/stubdex/stubdex/internal/codegen/meta"
)

func init() {
	generator.Register("typescript", Generate)
}

func Generate(logger *slog.Logger, outputDir string, md *meta.Metadata) error {
	version, err := common.GetVersion()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	if err := generateProject(logger, outputDir, version); err != nil {
		return err
	}
	if err := generateTypes(logger, outputDir, md); err != nil {
		return err
	}

	if err := common.GenerateLicense(logger, outputDir); err != nil {
		return err
	}
	if err := common.GenerateReadme(logger, outputDir); err != nil {
		return err
	}

	logger.Info("Generated TypeScript declarations", "dir", outputDir)
	return nil
}
