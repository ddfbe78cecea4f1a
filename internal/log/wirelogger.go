package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// wireMaxPayload caps how much of a request or response body appears in
// a wire log line.
const wireMaxPayload = 256

// WireLogger taps the textual API protocol with optional file output.
type WireLogger interface {
	Request(path string, payload []byte)
	Response(path string, status int, body []byte)
}

// wireLogger implements WireLogger with thread-safe output.
type wireLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWire creates a new WireLogger. If writer is nil, returns a no-op logger.
func NewWire(w io.Writer) WireLogger {
	return &wireLogger{w: w}
}

func (l *wireLogger) Request(path string, payload []byte) {
	l.emit("C->S", path, 0, payload)
}

func (l *wireLogger) Response(path string, status int, body []byte) {
	l.emit("S->C", path, status, body)
}

func (l *wireLogger) emit(dir, path string, status int, data []byte) {
	if l.w == nil {
		return
	}

	trimmed := data
	suffix := ""
	if len(trimmed) > wireMaxPayload {
		trimmed = trimmed[:wireMaxPayload]
		suffix = fmt.Sprintf("... (%d bytes total)", len(data))
	}

	var line string
	if status > 0 {
		line = fmt.Sprintf("%s %s %s %d %q%s\n",
			time.Now().Format("2006/01/02 15:04:05"), dir, path, status, trimmed, suffix)
	} else {
		line = fmt.Sprintf("%s %s %s %q%s\n",
			time.Now().Format("2006/01/02 15:04:05"), dir, path, trimmed, suffix)
	}

	l.mu.Lock()
	_, _ = l.w.Write([]byte(line))
	l.mu.Unlock()
}
