package common

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const readmeTemplate = `# stubdex generated bindings

Typed bindings generated by [stubdex](https://github.com/stubdex/stubdex) from a
scripting-API stub catalog.

## About

Every type in this package mirrors one declaration from the stub corpus the
catalog was scanned from: its supertypes, its attributes and its method
signatures. The files are generated; do not edit them by hand. Regenerate with
` + "`stubdex generate`" + ` after the stub corpus changes.

## License

MIT License - See LICENSE.txt for details.
`

func GenerateReadme(logger *slog.Logger, outputDir string) error {
	readmePath := filepath.Join(outputDir, "README.md")

	if err := os.WriteFile(readmePath, []byte(readmeTemplate), 0644); err != nil {
		return fmt.Errorf("write README.md: %w", err)
	}

	logger.Debug("Generated README.md", "path", readmePath)
	return nil
}
