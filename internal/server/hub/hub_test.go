package hub

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func copyCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join("..", "..", "..", "pyi", "testdata", "corpus")
	if err := copyFS(dir, os.DirFS(src)); err != nil {
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

func newService(t *testing.T, config ServiceConfig) *Service {
	t.Helper()
	svc, err := New(config, discardLogger())
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServiceLoadInMemory(t *testing.T) {
	svc := newService(t, ServiceConfig{Root: copyCorpus(t)})

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := svc.Catalog().Len(); got != 8 {
		t.Errorf("catalog holds %d types, want 8", got)
	}
	snap := svc.Snapshot()
	if snap.ID == "" {
		t.Error("snapshot has no id")
	}
	if len(snap.Files) != 2 {
		t.Errorf("snapshot records %d files, want 2", len(snap.Files))
	}
}

func TestServiceLoadPersistent(t *testing.T) {
	root := copyCorpus(t)
	indexPath := filepath.Join(t.TempDir(), "stubdex.db")
	ctx := context.Background()

	svc := newService(t, ServiceConfig{Root: root, Index: indexPath, Tool: "test-build"})
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	firstID := svc.Snapshot().ID
	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := newService(t, ServiceConfig{Root: root, Index: indexPath, Tool: "test-build"})
	if err := reopened.Load(ctx); err != nil {
		t.Fatalf("Load from existing index failed: %v", err)
	}
	if got := reopened.Catalog().Len(); got != 8 {
		t.Errorf("catalog holds %d types, want 8", got)
	}

	// Nothing changed on disk, so the second load must not re-parse and
	// the snapshot keeps its identity.
	_, changed, err := reopened.Rescan(ctx)
	if err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("rescan re-parsed %v, want nothing", changed)
	}
	if got := reopened.Snapshot().ID; got != firstID {
		t.Errorf("unchanged rescan minted snapshot %q, want %q kept", got, firstID)
	}
}

func TestServiceRescanNotifiesSubscribers(t *testing.T) {
	root := copyCorpus(t)
	svc := newService(t, ServiceConfig{Root: root})
	ctx := context.Background()

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	events, cancel := svc.Subscribe()
	defer cancel()

	stub := filepath.Join(root, "mathutils", "__init__.pyi")
	extra := "\n\nclass Quaternion:\n    w: float\n"
	appendFile(t, stub, extra)

	snap, _, err := svc.Rescan(ctx)
	if err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
	if !snap.Catalog.Has("Quaternion") {
		t.Error("rescan missed the new declaration")
	}

	select {
	case ev := <-events:
		if ev.Snapshot.ID != snap.ID {
			t.Errorf("event snapshot id = %q, want %q", ev.Snapshot.ID, snap.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event after rescan")
	}
}

func TestServiceSubscribeCancel(t *testing.T) {
	svc := newService(t, ServiceConfig{Root: copyCorpus(t)})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	events, cancel := svc.Subscribe()
	cancel()
	cancel()

	if _, ok := <-events; ok {
		t.Error("channel still open after cancel")
	}

	// A cancelled subscriber must not block later rescans.
	if _, _, err := svc.Rescan(context.Background()); err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
}

func TestServiceWatchRescans(t *testing.T) {
	root := copyCorpus(t)
	svc := newService(t, ServiceConfig{Root: root, Watch: true, WatchDebounce: 50 * time.Millisecond})
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	events, cancel := svc.Subscribe()
	defer cancel()

	watchErr := make(chan error, 1)
	go func() { watchErr <- svc.Watch(ctx) }()
	select {
	case <-svc.Ready():
	case err := <-watchErr:
		t.Fatalf("Watch failed: %v", err)
	}

	stub := filepath.Join(root, "mathutils", "__init__.pyi")
	appendFile(t, stub, "\n\nclass Euler:\n    order: str\n")

	select {
	case ev := <-events:
		if !ev.Snapshot.Catalog.Has("Euler") {
			t.Error("watch rescan missed the new declaration")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no rescan after stub change")
	}

	stop()
	if err := <-watchErr; err != nil {
		t.Errorf("Watch returned %v on shutdown", err)
	}
}

func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("appending to %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing %s: %v", path, err)
	}
}
