// Package index persists a scanned catalog snapshot in a bolt database
// so that servers and repeated CLI runs can skip re-parsing unchanged
// stub trees.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	bolt "go.etcd.io/bbolt"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/pyi"
)

var (
	bucketMeta  = []byte("meta")
	bucketDecls = []byte("decls")
	bucketFiles = []byte("files")

	keyID      = []byte("id")
	keyCreated = []byte("created")
	keyTool    = []byte("tool")
	keySchema  = []byte("schema")
)

// schemaVersion guards against opening index files written by an
// incompatible build.
const schemaVersion = "1"

// Snapshot is one persisted scan result.
type Snapshot struct {
	ID      string
	Created time.Time
	Tool    string
	Catalog *catalog.Catalog
	Files   []pyi.File
}

// Store wraps the bolt database holding the snapshot.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the index database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save replaces the stored snapshot with the given scan result and
// returns the new snapshot metadata.
func (s *Store) Save(res *pyi.Result, tool string) (*Snapshot, error) {
	snap := &Snapshot{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Tool:    tool,
		Catalog: res.Catalog,
		Files:   res.Files,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketDecls, bucketFiles} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keySchema, []byte(schemaVersion)); err != nil {
			return err
		}
		if err := meta.Put(keyID, []byte(snap.ID)); err != nil {
			return err
		}
		if err := meta.Put(keyCreated, []byte(snap.Created.Format(time.RFC3339Nano))); err != nil {
			return err
		}
		if err := meta.Put(keyTool, []byte(snap.Tool)); err != nil {
			return err
		}

		decls := tx.Bucket(bucketDecls)
		if err := res.Catalog.Walk(func(d *catalog.Declaration) error {
			data, err := catalog.MarshalDecl(d)
			if err != nil {
				return err
			}
			return decls.Put([]byte(d.Name), data)
		}); err != nil {
			return err
		}

		files := tx.Bucket(bucketFiles)
		for _, f := range res.Files {
			data, err := json.Marshal(f)
			if err != nil {
				return err
			}
			if err := files.Put([]byte(f.Path), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	return snap, nil
}

// Load materializes the stored snapshot. An empty or incompatible
// database fails with a not-found error.
func (s *Store) Load() (*Snapshot, error) {
	snap := &Snapshot{}
	b := catalog.NewBuilder()

	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("index holds no snapshot: %w", errdefs.ErrNotFound)
		}
		if v := meta.Get(keySchema); string(v) != schemaVersion {
			return fmt.Errorf("index schema %q is not %q: %w", v, schemaVersion, errdefs.ErrInvalidArgument)
		}
		snap.ID = string(meta.Get(keyID))
		snap.Tool = string(meta.Get(keyTool))
		if v := meta.Get(keyCreated); len(v) > 0 {
			t, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				return fmt.Errorf("index created timestamp: %w", err)
			}
			snap.Created = t
		}

		if err := tx.Bucket(bucketDecls).ForEach(func(k, v []byte) error {
			var d catalog.Declaration
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("declaration %s: %w", k, err)
			}
			return b.Add(&d)
		}); err != nil {
			return err
		}

		return tx.Bucket(bucketFiles).ForEach(func(k, v []byte) error {
			var f pyi.File
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("file record %s: %w", k, err)
			}
			snap.Files = append(snap.Files, f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	snap.Catalog = b.Build()
	return snap, nil
}

// Refresh re-scans root, re-parsing only the files whose digest
// changed since the stored snapshot and dropping declarations of
// deleted files. It returns the snapshot together with the paths that
// had to be parsed again; when nothing changed the stored snapshot is
// returned as-is instead of saving a new one.
func (s *Store) Refresh(ctx context.Context, root string, tool string) (*Snapshot, []string, error) {
	var prev *Snapshot
	stored := map[string]pyi.File{}
	if snap, err := s.Load(); err == nil {
		prev = snap
		for _, f := range snap.Files {
			stored[f.Path] = f
		}
	} else if !errdefs.IsNotFound(err) {
		return nil, nil, err
	}

	fsys := os.DirFS(root)
	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".pyi") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking stub tree: %w", err)
	}

	res := &pyi.Result{}
	b := catalog.NewBuilder()
	var changed []string
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		dgst := digest.FromBytes(data)

		if old, ok := stored[path]; ok && old.Digest == dgst {
			decls, err := s.loadDecls(old.Types)
			if err != nil {
				return nil, nil, err
			}
			for _, d := range decls {
				if err := b.Add(d); err != nil {
					return nil, nil, err
				}
			}
			res.Files = append(res.Files, old)
			continue
		}

		decls, err := pyi.Parse(path, data)
		if err != nil {
			return nil, nil, err
		}
		names := make([]string, 0, len(decls))
		for _, d := range decls {
			if err := b.Add(d); err != nil {
				return nil, nil, err
			}
			names = append(names, d.Name)
		}
		res.Files = append(res.Files, pyi.File{Path: path, Digest: dgst, Types: names})
		changed = append(changed, path)
	}
	res.Catalog = b.Build()

	// An unchanged tree keeps its snapshot identity; only content
	// changes mint a new one. Equal lengths with nothing reparsed means
	// no file appeared, changed, or went away.
	if prev != nil && len(changed) == 0 && len(res.Files) == len(prev.Files) {
		return prev, nil, nil
	}

	snap, err := s.Save(res, tool)
	if err != nil {
		return nil, nil, err
	}
	return snap, changed, nil
}

func (s *Store) loadDecls(names []string) ([]*catalog.Declaration, error) {
	out := make([]*catalog.Declaration, 0, len(names))
	err := s.db.View(func(tx *bolt.Tx) error {
		decls := tx.Bucket(bucketDecls)
		if decls == nil {
			return fmt.Errorf("index holds no declarations: %w", errdefs.ErrNotFound)
		}
		for _, name := range names {
			v := decls.Get([]byte(name))
			if v == nil {
				return fmt.Errorf("declaration %q missing from index: %w", name, errdefs.ErrNotFound)
			}
			var d catalog.Declaration
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("declaration %s: %w", name, err)
			}
			out = append(out, &d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
