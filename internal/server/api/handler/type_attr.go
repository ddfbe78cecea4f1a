package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// TypeAttr returns a handler that resolves a single attribute as seen on
// a declaration, searching its supertype chain when the declaration does
// not define it itself.
func TypeAttr(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		name, ok := req.Params["name"]
		if !ok || name == "" {
			return api.ErrBadRequest("missing type name")
		}
		attr, ok := req.Params["attr"]
		if !ok || attr == "" {
			return api.ErrBadRequest("missing attribute name")
		}
		a, err := svc.Catalog().ResolveAttr(name, attr)
		if err != nil {
			return err
		}
		payload := apitypes.AttrResponse{Type: name, Name: attr, Attr: a}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
