package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/index"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// EventStreamHandler returns a stream handler that pushes one JSON line
// per snapshot swap. The current snapshot is sent first so clients know
// the state they start from.
func EventStreamHandler(svc *hub.Service) StreamHandlerFunc {
	return func(conn net.Conn, logger *slog.Logger) error {
		defer conn.Close()

		events, cancel := svc.Subscribe()
		defer cancel()

		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			_, _ = io.Copy(io.Discard, conn)
		}()

		if err := writeEvent(conn, snapshotEvent(svc.Snapshot(), nil)); err != nil {
			return err
		}

		for {
			select {
			case <-clientGone:
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if err := writeEvent(conn, snapshotEvent(ev.Snapshot, ev.Changed)); err != nil {
					return err
				}
				logger.Debug("api event pushed", "snapshot", ev.Snapshot.ID)
			}
		}
	}
}

func snapshotEvent(snap *index.Snapshot, changed []string) apitypes.SnapshotEvent {
	return apitypes.SnapshotEvent{
		SnapshotID: snap.ID,
		Created:    snap.Created,
		Types:      snap.Catalog.Len(),
		Changed:    changed,
	}
}

func writeEvent(conn net.Conn, ev apitypes.SnapshotEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
