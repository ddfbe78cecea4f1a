package pyi

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/stubdex/stubdex/catalog"
)

// File records one scanned stub file: its slash path relative to the
// scan root, the digest of its contents, and the type names it
// declares in source order.
type File struct {
	Path   string        `json:"path"`
	Digest digest.Digest `json:"digest"`
	Types  []string      `json:"types,omitempty"`
}

// Result is the outcome of scanning a stub tree.
type Result struct {
	Catalog *catalog.Catalog
	Files   []File
}

// ScanDir parses every .pyi file under root and merges the
// declarations into a single catalog. Files are visited in sorted path
// order, so repeated scans of an unchanged tree produce structurally
// equal results.
func ScanDir(ctx context.Context, root string) (*Result, error) {
	return ScanFS(ctx, os.DirFS(root))
}

// ScanFS is ScanDir over any fs.FS.
func ScanFS(ctx context.Context, fsys fs.FS) (*Result, error) {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".pyi") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking stub tree: %w", err)
	}

	type parsed struct {
		file  File
		decls []*catalog.Declaration
	}
	results := make([]parsed, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			decls, err := Parse(path, data)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(decls))
			for _, d := range decls {
				names = append(names, d.Name)
			}
			results[i] = parsed{
				file:  File{Path: path, Digest: digest.FromBytes(data), Types: names},
				decls: decls,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := catalog.NewBuilder()
	res := &Result{Files: make([]File, 0, len(results))}
	for _, r := range results {
		for _, d := range r.decls {
			if err := b.Add(d); err != nil {
				return nil, err
			}
		}
		res.Files = append(res.Files, r.file)
	}
	res.Catalog = b.Build()
	return res, nil
}

// ParseFile parses a single stub file from disk.
func ParseFile(path string) ([]*catalog.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data)
}
