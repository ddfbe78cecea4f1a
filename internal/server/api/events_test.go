package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
	th "github.com/stubdex/stubdex/internal/testing"
)

func TestEventStream(t *testing.T) {
	addr, svc, done := th.StartAPIServer(t, func(r *api.Router, svc *hub.Service, apiSrv *api.Server) {
		r.RegisterStream("events", api.EventStreamHandler(svc))
	})
	defer done()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("events\x00"))
	require.NoError(t, err)

	br := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	line, err := br.ReadString('\n')
	require.NoError(t, err)
	var first apitypes.SnapshotEvent
	require.NoError(t, json.Unmarshal([]byte(line), &first))
	require.Equal(t, svc.Snapshot().ID, first.SnapshotID)
	require.Equal(t, 8, first.Types)
	require.Empty(t, first.Changed)

	snap, _, err := svc.Rescan(context.Background())
	require.NoError(t, err)

	line, err = br.ReadString('\n')
	require.NoError(t, err)
	var second apitypes.SnapshotEvent
	require.NoError(t, json.Unmarshal([]byte(line), &second))
	require.Equal(t, snap.ID, second.SnapshotID)
	require.Equal(t, []string{"bpy/types.pyi", "mathutils/__init__.pyi"}, second.Changed)
}

func TestEventStreamClientDisconnect(t *testing.T) {
	addr, svc, done := th.StartAPIServer(t, func(r *api.Router, svc *hub.Service, apiSrv *api.Server) {
		r.RegisterStream("events", api.EventStreamHandler(svc))
	})
	defer done()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_, err = conn.Write([]byte("events\x00"))
	require.NoError(t, err)

	br := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = br.ReadString('\n')
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// The handler must unsubscribe once the client is gone so later
	// rescans are not blocked by a dead stream.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		_, _, err := svc.Rescan(context.Background())
		require.NoError(t, err)
	}
}
