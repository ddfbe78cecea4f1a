package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stubdex/stubdex/apiclient"
	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api/handler"
)

type Search struct {
	Query    string `arg:"" help:"Substring to match against type and member names"`
	Kind     string `help:"Restrict matches to one kind" enum:"any,type,attr,method" default:"any"`
	Limit    int    `help:"Maximum number of matches" default:"50"`
	Root     string `help:"Root directory of the .pyi stub tree" default:"." env:"STUBDEX_ROOT"`
	Index    string `help:"Read the catalog from this index database" env:"STUBDEX_INDEX"`
	Remote   string `help:"Address of a running catalog server to query instead of scanning" env:"STUBDEX_REMOTE"`
	Password string `help:"API password for the remote server" env:"STUBDEX_API_PASSWORD"`
}

// Run is called by Kong when the search command is executed.
func (s *Search) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kind := s.Kind
	if kind == "any" {
		kind = ""
	}
	sr := apitypes.SearchRequest{Query: s.Query, Kind: kind, Limit: s.Limit}

	if s.Remote != "" {
		return withAuthRetry(s.Remote, s.Password, func(c *apiclient.Client) error {
			resp, err := c.SearchCtx(ctx, sr)
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	}

	cat, err := loadCatalog(ctx, s.Root, s.Index)
	if err != nil {
		return err
	}
	matches := handler.SearchCatalog(cat, sr)
	return printJSON(apitypes.SearchResponse{Query: s.Query, Count: len(matches), Matches: matches})
}
