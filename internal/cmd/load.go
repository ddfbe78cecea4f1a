package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/index"
	"github.com/stubdex/stubdex/pyi"
)

// loadCatalog obtains a catalog for offline commands. With an index path
// the stored snapshot is read as-is; otherwise the stub tree under root
// is scanned into memory.
func loadCatalog(ctx context.Context, root, indexPath string) (*catalog.Catalog, error) {
	if indexPath != "" {
		store, err := index.Open(indexPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		snap, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("load index %s: %w", indexPath, err)
		}
		return snap.Catalog, nil
	}
	res, err := pyi.ScanDir(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return res.Catalog, nil
}

// printJSON writes v to stdout as indented JSON, matching the payloads a
// catalog server would return for the same request.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
