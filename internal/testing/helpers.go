package testing

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// CorpusDir returns the absolute path of the bundled .pyi corpus. It is
// resolved from this source file so tests in any package find it.
func CorpusDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "pyi", "testdata", "corpus")
}

// CopyCorpus copies the bundled corpus into a fresh temp dir so a test
// can mutate stub files without touching the checked-in tree.
func CopyCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := copyFS(dir, os.DirFS(CorpusDir())); err != nil {
		t.Fatalf("copy corpus: %v", err)
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

// StartAPIServer starts a catalog service over a writable copy of the
// bundled corpus and an API server on a loopback port. The register
// callback wires up routes before the listener accepts connections.
func StartAPIServer(
	t *testing.T,
	register func(r *api.Router, svc *hub.Service, apiSrv *api.Server),
) (string, *hub.Service, func()) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := hub.New(hub.ServiceConfig{Root: CopyCorpus(t)}, logger)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load stub tree: %v", err)
	}

	apiSrv := api.New(svc, "127.0.0.1:0", api.ServerConfig{}, logger, nil)
	if register != nil {
		register(apiSrv.Router(), svc, apiSrv)
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("start api server: %v", err)
	}

	done := func() {
		apiSrv.Close()
		_ = svc.Close()
	}
	return apiSrv.Addr(), svc, done
}
