package e2e_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stubdex/stubdex/apiclient"
	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/cmd"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
	th "github.com/stubdex/stubdex/internal/testing"
)

const e2eAddr = "127.0.0.1:3263"

const waveModifierStub = `

class WaveModifier(Modifier, bpy_struct):
    """Wave effect modifier"""

    speed: float
    """Wave propagation speed

    :type: float
    """
`

// TestServerEndToEnd drives a full server process the way the CLI wires
// it up: persistent index, filesystem watcher, auth handshake, and the
// events stream, all through the public client.
func TestServerEndToEnd(t *testing.T) {
	root := th.CopyCorpus(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s := cmd.Server{
		HubConfig: hub.ServiceConfig{
			Root:          root,
			Index:         filepath.Join(t.TempDir(), "index.db"),
			Tool:          "bpy-stubgen",
			Watch:         true,
			WatchDebounce: 100 * time.Millisecond,
		},
		ApiServerConfig: api.ServerConfig{
			Addr:        e2eAddr,
			RequireAuth: true,
		},
		ConnectionTimeout: 5 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := s.StartServer(ctx, logger, nil); err != nil {
			panic(err)
		}
	}()

	c := apiclient.NewWithPassword(e2eAddr, waitForPassword(t))

	var ping *apitypes.PingResponse
	var err error
	for i := 0; i < 50; i++ {
		ping, err = c.Ping()
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if ping.Server != "stubdex" {
		t.Errorf("ping server = %q, want stubdex", ping.Server)
	}

	if _, err := apiclient.New(e2eAddr).Ping(); !isStatus(err, 401) {
		t.Errorf("unauthenticated ping error = %v, want status 401", err)
	}

	types, err := c.Types()
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	if types.Count != 8 || !slices.Contains(types.Types, "ArrayModifier") {
		t.Errorf("types = %d %v, want 8 including ArrayModifier", types.Count, types.Types)
	}

	decl, err := c.Type("ArrayModifier")
	if err != nil {
		t.Fatalf("type ArrayModifier: %v", err)
	}
	d := decl.Declaration
	if want := []string{"Modifier", "bpy_struct"}; !slices.Equal(d.Supertypes, want) {
		t.Errorf("supertypes = %v, want %v", d.Supertypes, want)
	}
	if got := d.Attrs["count"].Type.String(); got != "int" {
		t.Errorf("count attr type = %q, want int", got)
	}

	// name lives on Modifier and as_pointer on bpy_struct; both must
	// resolve through ArrayModifier.
	attr, err := c.Attr("ArrayModifier", "name")
	if err != nil {
		t.Fatalf("attr name: %v", err)
	}
	if got := attr.Attr.Type.String(); got != "str" {
		t.Errorf("inherited name type = %q, want str", got)
	}
	meth, err := c.Method("ArrayModifier", "as_pointer")
	if err != nil {
		t.Fatalf("method as_pointer: %v", err)
	}
	if got := meth.Method.Return.String(); got != "int" {
		t.Errorf("as_pointer return = %q, want int", got)
	}

	if _, err := c.Type("NoSuchType"); !isStatus(err, 404) {
		t.Errorf("missing type error = %v, want status 404", err)
	}
	if _, err := c.Attr("ArrayModifier", "no_such_attr"); !isStatus(err, 404) {
		t.Errorf("missing attr error = %v, want status 404", err)
	}

	sr, err := c.Search(apitypes.SearchRequest{Query: "modifier", Kind: "type"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var hits []string
	for _, m := range sr.Matches {
		hits = append(hits, m.Type)
	}
	if !slices.Contains(hits, "ArrayModifier") {
		t.Errorf("search hits = %v, want ArrayModifier", hits)
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Types != 8 || stats.Files != 2 || stats.Tool != "bpy-stubgen" {
		t.Errorf("stats = %+v, want 8 types over 2 files from bpy-stubgen", stats)
	}

	vr, err := c.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if vr.Count != 0 {
		t.Errorf("validate findings = %v, want none", vr.Findings)
	}

	// Nothing changed on disk, so the rescan must reparse nothing.
	rr, err := c.Rescan()
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(rr.Parsed) != 0 {
		t.Errorf("unchanged rescan reparsed %v", rr.Parsed)
	}
	if rr.SnapshotID != stats.SnapshotID {
		t.Errorf("unchanged rescan snapshot = %q, want %q kept", rr.SnapshotID, stats.SnapshotID)
	}

	es, err := c.Events(ctx)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer es.Close()
	_ = es.SetReadDeadline(time.Now().Add(15 * time.Second))
	first, err := es.Next()
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if first.Types != 8 {
		t.Errorf("initial event types = %d, want 8", first.Types)
	}

	// Appending a class triggers the watcher; the next snapshot event
	// carries the new type and only the touched file reparses.
	appendStub(t, filepath.Join(root, "bpy", "types.pyi"), waveModifierStub)
	second, err := es.Next()
	if err != nil {
		t.Fatalf("rescan event: %v", err)
	}
	if second.Types != 9 {
		t.Errorf("rescan event types = %d, want 9", second.Types)
	}
	if !slices.Contains(second.Changed, "bpy/types.pyi") {
		t.Errorf("rescan event changed = %v, want bpy/types.pyi", second.Changed)
	}

	wave, err := c.Type("WaveModifier")
	if err != nil {
		t.Fatalf("type WaveModifier after rescan: %v", err)
	}
	if want := []string{"Modifier", "bpy_struct"}; !slices.Equal(wave.Declaration.Supertypes, want) {
		t.Errorf("WaveModifier supertypes = %v, want %v", wave.Declaration.Supertypes, want)
	}
}

// waitForPassword polls for the key file the server writes under the
// user config dir before it opens the listener.
func waitForPassword(t *testing.T) string {
	t.Helper()
	keyPath := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "stubdex", "stubdex.key.txt")
	for i := 0; i < 50; i++ {
		if b, err := os.ReadFile(keyPath); err == nil {
			return strings.TrimSpace(string(b))
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("password file %s never appeared", keyPath)
	return ""
}

func appendStub(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("append stub: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close stub: %v", err)
	}
}

func isStatus(err error, status int) bool {
	var apiErr *apitypes.ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	var plain apitypes.ApiError
	return errors.As(err, &plain) && plain.Status == status
}
