package typescript

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const packageTemplate = `{
  "name": "stubdex-types",
  "version": "{{.Version}}",
  "description": "Generated scripting-API type declarations",
  "license": "MIT",
  "types": "index.d.ts",
  "files": ["index.d.ts"]
}
`

func generateProject(logger *slog.Logger, projectDir, version string) error {
	logger.Debug("Generating TypeScript package scaffolding")

	if err := os.WriteFile(filepath.Join(projectDir, "package.json"), []byte(packageTemplateFor(version)), 0o644); err != nil {
		return fmt.Errorf("write package.json: %w", err)
	}

	logger.Info("Generated TypeScript package.json", "version", version)
	return nil
}

func packageTemplateFor(version string) string {
	tmpl, err := template.New("pkg").Parse(packageTemplate)
	if err != nil {
		// Template is a compile-time constant.
		panic(err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ Version string }{Version: version}); err != nil {
		panic(err)
	}
	return b.String()
}
