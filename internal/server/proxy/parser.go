package proxy

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/stubdex/stubdex/internal/log"
	"github.com/stubdex/stubdex/internal/server/api/auth"
)

// maxParseBuffer caps frame reassembly so a peer that never terminates
// a frame cannot grow the buffer without bound.
const maxParseBuffer = 64 * 1024

// Parser reassembles catalog protocol frames from the relayed byte
// stream and taps them into the wire logger. A connection that opens
// with the auth handshake turns opaque: everything after the magic is
// encrypted, so parsing stops and bytes are relayed untouched.
type Parser struct {
	mu     sync.Mutex
	logger *slog.Logger
	wire   log.WireLogger

	client bytes.Buffer
	server bytes.Buffer
	path   string
	opaque bool
}

func NewParser(logger *slog.Logger, wire log.WireLogger) *Parser {
	return &Parser{logger: logger, wire: wire}
}

// Parse processes one relayed chunk. Complete frames are logged; partial
// frames stay buffered until the rest arrives.
func (p *Parser) Parse(data []byte, clientToServer bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opaque {
		return
	}
	if clientToServer {
		p.parseClient(data)
	} else {
		p.parseServer(data)
	}
}

func (p *Parser) parseClient(data []byte) {
	p.client.Write(data)

	peek := p.client.Bytes()
	magic := []byte(auth.HandshakeMagic)
	if len(peek) < len(magic) {
		if bytes.HasPrefix(magic, peek) {
			// Could still turn out to be a handshake.
			return
		}
	} else if bytes.HasPrefix(peek, magic) {
		p.logger.Info("Authenticated session, relaying opaque bytes")
		p.opaque = true
		return
	}

	for {
		raw := p.client.Bytes()
		i := bytes.IndexByte(raw, 0)
		if i < 0 {
			p.capBuffer(&p.client)
			return
		}
		req := string(raw[:i])
		p.client.Next(i + 1)

		path, payload := req, ""
		if sp := strings.IndexAny(req, " \t\r\n"); sp >= 0 {
			path, payload = req[:sp], req[sp+1:]
		}
		p.path = path
		p.logger.Info("Proxied request", "path", path, "payload", len(payload))
		if p.wire != nil {
			p.wire.Request(path, []byte(payload))
		}
	}
}

func (p *Parser) parseServer(data []byte) {
	p.server.Write(data)

	for {
		raw := p.server.Bytes()
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			p.capBuffer(&p.server)
			return
		}
		line := string(raw[:i])
		p.server.Next(i + 1)

		// Error responses are problem JSON carrying a status; anything
		// else is a success body.
		status := 200
		var problem struct {
			Status int `json:"status"`
		}
		if err := json.Unmarshal([]byte(line), &problem); err == nil && problem.Status != 0 {
			status = problem.Status
		}
		p.logger.Info("Proxied response", "path", p.path, "status", status, "bytes", len(line))
		if p.wire != nil {
			p.wire.Response(p.path, status, []byte(line))
		}
	}
}

func (p *Parser) capBuffer(buf *bytes.Buffer) {
	if buf.Len() > maxParseBuffer {
		p.logger.Warn("Parser buffer overflow, resetting")
		buf.Reset()
	}
}
