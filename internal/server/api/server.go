package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/stubdex/stubdex/internal/log"
	"github.com/stubdex/stubdex/internal/server/api/auth"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// Server implements a small TCP API for querying the type catalog.
type Server struct {
	svc    *hub.Service
	addr   string
	ln     net.Listener
	logger *slog.Logger
	wire   log.WireLogger
	router *Router
	config ServerConfig
	key    []byte
}

// New creates a new ApiServer bound to a hub.Service instance. wire may
// be nil to disable protocol tracing.
func New(svc *hub.Service, addr string, config ServerConfig, logger *slog.Logger, wire log.WireLogger) *Server {
	a := &Server{
		svc:    svc,
		addr:   addr,
		logger: logger,
		wire:   wire,
		config: config,
	}
	a.router = NewRouter()
	return a
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Addr returns the listener address once Start has run, otherwise the
// configured address.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Service returns the underlying catalog service.
func (a *Server) Service() *hub.Service { return a.svc }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	if a.config.Password != "" {
		key, err := auth.DeriveKey(a.config.Password)
		if err != nil {
			return fmt.Errorf("derive API key: %w", err)
		}
		a.key = key
	} else if a.config.RequireAuth {
		return errors.New("auth required but no API password configured")
	}
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", a.addr, "auth", a.key != nil)
	go a.serve()
	return nil
}

// Close stops the API server.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || strings.Contains(strings.ToLower(err.Error()), "use of closed network connection") {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, path string, err error) {
	apiErr := WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	if a.wire != nil {
		a.wire.Response(path, apiErr.Status, problemJSON)
	}
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, path, rest string) {
	if a.wire != nil {
		a.wire.Response(path, 200, []byte(rest))
	}
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	if a.config.ConnectionTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(a.config.ConnectionTimeout)); err != nil {
			connLogger.Warn("Failed to set deadline", "error", err)
		}
	}
	r := bufio.NewReader(conn)

	if a.key != nil {
		isAuth, err := auth.IsAuthHandshake(r)
		if err != nil {
			connLogger.Error("api peek handshake", "error", err)
			return
		}
		if isAuth {
			clientNonce, serverNonce, err := auth.HandleAuthHandshake(r, conn, a.key, false)
			if err != nil {
				connLogger.Error("api auth handshake failed", "error", err)
				a.writeError(conn, "", err)
				return
			}
			sessionKey := auth.DeriveSessionKey(a.key, serverNonce, clientNonce)
			secureConn, err := auth.WrapConn(conn, sessionKey)
			if err != nil {
				connLogger.Error("api wrap conn", "error", err)
				return
			}
			conn = secureConn
			r = bufio.NewReader(conn)
		} else if a.config.RequireAuth {
			connLogger.Error("api unauthenticated request rejected")
			a.writeError(conn, "", ErrUnauthorized("authentication required"))
			return
		}
	}
	w := conn

	// Read until null terminator
	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	// Remove null terminator
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, "", ErrBadRequest("empty request"))
		return
	}

	// Split on first whitespace character using regex \s
	wsRegex := regexp.MustCompile(`\s`)
	loc := wsRegex.FindStringIndex(reqData)

	var path, payload string
	if loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
		payload = ""
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, "", ErrBadRequest("empty path"))
		return
	}

	connLogger.Info("api cmd", "path", path)
	if a.wire != nil {
		a.wire.Request(path, []byte(payload))
	}

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, path, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(w, path, res.JSON)
		return
	} else if sh, _ := a.router.MatchStream(path); sh != nil {
		connLogger.Info("api stream begin", "path", path)
		_ = conn.SetDeadline(time.Time{})

		// Stream handler takes ownership of connection
		if err := sh(conn, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}
	connLogger.Error("api unknown path", "path", path)
	a.writeError(w, path, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}
