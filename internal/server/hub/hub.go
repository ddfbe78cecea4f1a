package hub

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/index"
	"github.com/stubdex/stubdex/pyi"
)

// Event describes one snapshot swap. Changed lists the stub files that
// were parsed again for it.
type Event struct {
	Snapshot *index.Snapshot
	Changed  []string
}

// Service owns the live snapshot. It loads the stub tree once, swaps in
// fresh snapshots on demand or on file changes, and hands the current
// catalog to API handlers.
type Service struct {
	config *ServiceConfig
	store  *index.Store
	logger *slog.Logger

	mu   sync.RWMutex
	snap *index.Snapshot

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int

	ready     chan struct{}
	readyOnce sync.Once
}

func New(config ServiceConfig, logger *slog.Logger) (*Service, error) {
	s := &Service{
		config: &config,
		logger: logger,
		subs:   make(map[int]chan Event),
		ready:  make(chan struct{}),
	}
	if config.Index != "" {
		store, err := index.Open(config.Index)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	return s, nil
}

// Load builds the initial snapshot. With a persistent index only stub
// files whose digest changed get parsed again; without one the whole
// tree is scanned into memory.
func (s *Service) Load(ctx context.Context) error {
	start := time.Now()
	snap, changed, err := s.refresh(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.logger.Info("Catalog loaded",
		"root", s.config.Root,
		"types", snap.Catalog.Len(),
		"files", len(snap.Files),
		"parsed", len(changed),
		"took", time.Since(start))
	return nil
}

// Root returns the stub tree root the service scans.
func (s *Service) Root() string { return s.config.Root }

// Catalog returns the current catalog.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Catalog
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot() *index.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Rescan rebuilds the snapshot from the stub tree, swaps it in and
// notifies subscribers. It returns the new snapshot and the stub files
// that were parsed again.
func (s *Service) Rescan(ctx context.Context) (*index.Snapshot, []string, error) {
	snap, changed, err := s.refresh(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.notify(Event{Snapshot: snap, Changed: changed})
	return snap, changed, nil
}

func (s *Service) refresh(ctx context.Context) (*index.Snapshot, []string, error) {
	if s.store != nil {
		return s.store.Refresh(ctx, s.config.Root, s.config.Tool)
	}
	res, err := pyi.ScanDir(ctx, s.config.Root)
	if err != nil {
		return nil, nil, err
	}
	changed := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		changed = append(changed, f.Path)
	}
	snap := &index.Snapshot{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Tool:    s.config.Tool,
		Catalog: res.Catalog,
		Files:   res.Files,
	}
	return snap, changed, nil
}

// Subscribe registers an event channel for snapshot swaps. The returned
// cancel func unregisters it; events are dropped if the subscriber
// falls behind.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 4)
	s.subs[id] = ch
	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

func (s *Service) notify(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Watch blocks watching the stub tree and rescans after changes settle.
// It returns when ctx is cancelled.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, s.config.Root); err != nil {
		return err
	}
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("Watching stub tree", "root", s.config.Root, "debounce", s.config.WatchDebounce)

	debounce := time.NewTimer(s.config.WatchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	dirty := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}
			if !strings.HasSuffix(event.Name, ".pyi") {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug("Stub file changed", "path", event.Name, "op", event.Op.String())
			if dirty {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			dirty = true
			debounce.Reset(s.config.WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("Watcher error", "error", err)

		case <-debounce.C:
			dirty = false
			snap, changed, err := s.Rescan(ctx)
			if err != nil {
				s.logger.Error("Rescan after change failed", "error", err)
				continue
			}
			s.logger.Info("Catalog rescanned", "types", snap.Catalog.Len(), "parsed", len(changed))
		}
	}
}

// Ready returns a channel that is closed once Watch has registered the
// stub tree with the filesystem watcher.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// Close releases the persistent index, if any.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// addRecursive watches root and every directory below it. New
// subdirectories are picked up from create events in Watch.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}
