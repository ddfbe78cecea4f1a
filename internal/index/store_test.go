package index

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/pyi"
)

func corpusPath() string {
	return filepath.Join("..", "..", "pyi", "testdata", "corpus")
}

func scanCorpus(t *testing.T) *pyi.Result {
	t.Helper()
	res, err := pyi.ScanDir(context.Background(), corpusPath())
	if err != nil {
		t.Fatalf("scanning corpus: %v", err)
	}
	return res
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stubdex.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	res := scanCorpus(t)

	saved, err := s.Save(res, "test-build")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("saved snapshot has no id")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ID != saved.ID {
		t.Errorf("loaded id = %q, want %q", loaded.ID, saved.ID)
	}
	if loaded.Tool != "test-build" {
		t.Errorf("loaded tool = %q, want test-build", loaded.Tool)
	}
	if loaded.Created.IsZero() {
		t.Error("loaded snapshot has no created timestamp")
	}

	want, err := catalog.MarshalJSONBytes(res.Catalog)
	if err != nil {
		t.Fatalf("marshal scanned: %v", err)
	}
	got, err := catalog.MarshalJSONBytes(loaded.Catalog)
	if err != nil {
		t.Fatalf("marshal loaded: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("loaded catalog differs from the saved one")
	}

	if len(loaded.Files) != len(res.Files) {
		t.Fatalf("loaded %d file records, want %d", len(loaded.Files), len(res.Files))
	}
	for i := range loaded.Files {
		if loaded.Files[i].Digest != res.Files[i].Digest {
			t.Errorf("file %s digest changed through the store", loaded.Files[i].Path)
		}
	}
}

func TestLoadEmptyStore(t *testing.T) {
	s := openStore(t)
	_, err := s.Load()
	if err == nil {
		t.Fatal("expected an error for an empty index")
	}
	if !errdefs.IsNotFound(err) {
		t.Errorf("error %v should be a not-found error", err)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	s := openStore(t)
	res := scanCorpus(t)

	first, err := s.Save(res, "one")
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := s.Save(res, "two")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if first.ID == second.ID {
		t.Error("every save must mint a fresh snapshot id")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ID != second.ID || loaded.Tool != "two" {
		t.Errorf("loaded %q/%q, want the second snapshot", loaded.ID, loaded.Tool)
	}
}

func copyCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := copyFS(dir, os.DirFS(corpusPath())); err != nil {
		t.Fatalf("copying corpus: %v", err)
	}
	return dir
}

// copyFS mirrors os.CopyFS, which needs Go 1.23+.
func copyFS(dir string, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		newPath := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(newPath, 0o777)
		}
		if !d.Type().IsRegular() {
			return &os.PathError{Op: "CopyFS", Path: path, Err: os.ErrInvalid}
		}
		r, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()
		info, err := r.Stat()
		if err != nil {
			return err
		}
		w, err := os.OpenFile(newPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o666|info.Mode()&0o777)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, r); err != nil {
			w.Close()
			return &os.PathError{Op: "Copy", Path: newPath, Err: err}
		}
		return w.Close()
	})
}

func TestRefreshSkipsUnchanged(t *testing.T) {
	s := openStore(t)
	root := copyCorpus(t)
	ctx := context.Background()

	first, changed, err := s.Refresh(ctx, root, "test-build")
	if err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	if len(changed) != 2 {
		t.Fatalf("initial refresh parsed %v, want both files", changed)
	}

	second, changed, err := s.Refresh(ctx, root, "test-build")
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("unchanged tree re-parsed %v", changed)
	}

	if second.ID != first.ID {
		t.Errorf("unchanged refresh minted snapshot %q, want %q kept", second.ID, first.ID)
	}

	a, _ := catalog.MarshalJSONBytes(first.Catalog)
	b, _ := catalog.MarshalJSONBytes(second.Catalog)
	if !bytes.Equal(a, b) {
		t.Error("refresh of an unchanged tree altered the catalog")
	}
}

func TestRefreshParsesModified(t *testing.T) {
	s := openStore(t)
	root := copyCorpus(t)
	ctx := context.Background()

	if _, _, err := s.Refresh(ctx, root, "test-build"); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	target := filepath.Join(root, "mathutils", "__init__.pyi")
	f, err := os.OpenFile(target, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening %s: %v", target, err)
	}
	if _, err := f.WriteString("\nclass Quaternion:\n    w: float\n"); err != nil {
		t.Fatalf("appending: %v", err)
	}
	_ = f.Close()

	snap, changed, err := s.Refresh(ctx, root, "test-build")
	if err != nil {
		t.Fatalf("refresh after edit: %v", err)
	}
	if len(changed) != 1 || changed[0] != "mathutils/__init__.pyi" {
		t.Errorf("changed = %v, want just the edited file", changed)
	}
	if !snap.Catalog.Has("Quaternion") {
		t.Error("new declaration missing after refresh")
	}
	if !snap.Catalog.Has("ArrayModifier") {
		t.Error("unchanged declarations must survive the refresh")
	}
}

func TestRefreshDropsDeletedFiles(t *testing.T) {
	s := openStore(t)
	root := copyCorpus(t)
	ctx := context.Background()

	if _, _, err := s.Refresh(ctx, root, "test-build"); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	if err := os.Remove(filepath.Join(root, "mathutils", "__init__.pyi")); err != nil {
		t.Fatalf("removing file: %v", err)
	}

	snap, _, err := s.Refresh(ctx, root, "test-build")
	if err != nil {
		t.Fatalf("refresh after delete: %v", err)
	}
	if snap.Catalog.Has("Vector") || snap.Catalog.Has("Matrix") {
		t.Error("declarations of a deleted file must not survive")
	}
	if !snap.Catalog.Has("bpy_struct") {
		t.Error("declarations of remaining files must survive")
	}
	if len(snap.Files) != 1 {
		t.Errorf("got %d file records, want 1", len(snap.Files))
	}
}
