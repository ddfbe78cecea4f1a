package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/stubdex/stubdex/internal/configpaths"
	"github.com/stubdex/stubdex/internal/log"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/api/auth"
	"github.com/stubdex/stubdex/internal/server/api/handler"
	"github.com/stubdex/stubdex/internal/server/hub"
)

const keyFileName = "stubdex.key.txt"

type Server struct {
	HubConfig         hub.ServiceConfig `embed:"" prefix:"hub."`
	ApiServerConfig   api.ServerConfig  `embed:"" prefix:"api."`
	ConnectionTimeout time.Duration     `help:"Per-request API connection timeout" default:"30s" env:"STUBDEX_CONNECTION_TIMEOUT"`
}

// Run is called by Kong when the server command is executed.
func (s *Server) Run(logger *slog.Logger, wire log.WireLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, wire)
}

func (s *Server) StartServer(ctx context.Context, logger *slog.Logger, wire log.WireLogger) error {
	s.ApiServerConfig.ConnectionTimeout = s.ConnectionTimeout

	logger.Info("Starting stubdex catalog server", "root", s.HubConfig.Root)

	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := path.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		s.ApiServerConfig.Password = strings.TrimSpace(string(pwd))
	} else {
		newPwd, err := auth.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate new API password: %w", err)
		}
		if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
			return fmt.Errorf("failed to create config dir for key file: %w", err)
		}
		if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
			return fmt.Errorf("failed to write new API password to file: %w", err)
		}
		s.ApiServerConfig.Password = newPwd
		logger.Info("Generated API server password", "path", keyFilePath)
		logger.Info("-------------------------------------")
		logger.Info("Your stubdex API server password is:")
		logger.Info("-------------------------------------")
		logger.Info(newPwd)
		logger.Info("-------------------------------------")
		logger.Info("You can change this password at any time by editing the file")
	}

	svc, err := hub.New(s.HubConfig, logger)
	if err != nil {
		return fmt.Errorf("create catalog service: %w", err)
	}
	if err := svc.Load(ctx); err != nil {
		_ = svc.Close()
		return fmt.Errorf("load stub tree: %w", err)
	}

	watchErrCh := make(chan error, 1)
	if s.HubConfig.Watch {
		go func() {
			watchErrCh <- svc.Watch(ctx)
		}()
		select {
		case err := <-watchErrCh:
			_ = svc.Close()
			return err
		case <-svc.Ready():
		}
	}

	if s.ApiServerConfig.Addr == "" {
		logger.Error("API server address must be set (default :3253).")
		return fmt.Errorf("API server address must be set (default :3253)")
	}

	apiSrv := api.New(svc, s.ApiServerConfig.Addr, s.ApiServerConfig, logger, wire)
	r := apiSrv.Router()
	r.Register("ping", handler.Ping())
	r.Register("types", handler.TypeList(svc))
	r.Register("type/{name}", handler.TypeGet(svc))
	r.Register("type/{name}/members", handler.TypeMembers(svc))
	r.Register("type/{name}/supertypes", handler.TypeSupertypes(svc))
	r.Register("type/{name}/attr/{attr}", handler.TypeAttr(svc))
	r.Register("type/{name}/method/{method}", handler.TypeMethod(svc))
	r.Register("search", handler.Search(svc))
	r.Register("stats", handler.Stats(svc))
	r.Register("rescan", handler.Rescan(svc))
	r.Register("validate", handler.Validate(svc))
	r.RegisterStream("events", api.EventStreamHandler(svc))

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		_ = svc.Close()
		return err
	}

	select {
	case <-ctx.Done():
		apiSrv.Close()
		if s.HubConfig.Watch {
			<-watchErrCh
		}
		return svc.Close()
	case err := <-watchErrCh:
		apiSrv.Close()
		_ = svc.Close()
		return err
	}
}
