package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stubdex/stubdex/apiclient"
	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/catalog"
)

type Get struct {
	Type     string `arg:"" help:"Declaration name to look up"`
	Member   string `arg:"" optional:"" help:"Attribute or method name on the declaration"`
	Root     string `help:"Root directory of the .pyi stub tree" default:"." env:"STUBDEX_ROOT"`
	Index    string `help:"Read the catalog from this index database" env:"STUBDEX_INDEX"`
	Remote   string `help:"Address of a running catalog server to query instead of scanning" env:"STUBDEX_REMOTE"`
	Password string `help:"API password for the remote server" env:"STUBDEX_API_PASSWORD"`
}

// Run is called by Kong when the get command is executed. Output matches
// the server payloads for the equivalent API request, so scripts can
// treat local and remote lookups the same.
func (g *Get) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if g.Remote != "" {
		return withAuthRetry(g.Remote, g.Password, func(c *apiclient.Client) error {
			return g.getRemote(ctx, c)
		})
	}

	cat, err := loadCatalog(ctx, g.Root, g.Index)
	if err != nil {
		return err
	}
	return g.getLocal(cat)
}

func (g *Get) getLocal(cat *catalog.Catalog) error {
	if g.Member == "" {
		d, err := cat.Lookup(g.Type)
		if err != nil {
			return err
		}
		return printJSON(apitypes.TypeResponse{Declaration: d})
	}
	if a, err := cat.ResolveAttr(g.Type, g.Member); err == nil {
		return printJSON(apitypes.AttrResponse{Type: g.Type, Name: g.Member, Attr: a})
	}
	m, err := cat.ResolveMethod(g.Type, g.Member)
	if err != nil {
		return err
	}
	return printJSON(apitypes.MethodResponse{Type: g.Type, Method: *m})
}

func (g *Get) getRemote(ctx context.Context, c *apiclient.Client) error {
	if g.Member == "" {
		tr, err := c.TypeCtx(ctx, g.Type)
		if err != nil {
			return err
		}
		return printJSON(tr)
	}
	if ar, err := c.AttrCtx(ctx, g.Type, g.Member); err == nil {
		return printJSON(ar)
	} else if isAPIStatus(err, 401) {
		return err
	}
	mr, err := c.MethodCtx(ctx, g.Type, g.Member)
	if err != nil {
		return err
	}
	return printJSON(mr)
}
