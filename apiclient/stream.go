package apiclient

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	apitypes "github.com/stubdex/stubdex/apitypes"
)

// EventStream is a server-push subscription to snapshot swaps. The
// server sends one JSON event per line: the current snapshot on connect,
// then one event per rescan.
type EventStream struct {
	conn net.Conn
	br   *bufio.Reader
}

// Next blocks until the server pushes the next snapshot event. It
// returns an error once the stream is closed on either side.
func (s *EventStream) Next() (*apitypes.SnapshotEvent, error) {
	line, err := s.br.ReadString('\n')
	if err != nil {
		return nil, err
	}
	var ev apitypes.SnapshotEvent
	if err := json.Unmarshal([]byte(strings.TrimSuffix(line, "\n")), &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

// SetReadDeadline bounds the next call to Next.
func (s *EventStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close terminates the subscription.
func (s *EventStream) Close() error { return s.conn.Close() }
