package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// TypeGet returns a handler that fetches one declaration by name.
// An unknown name yields a 404 problem response, never an empty body.
func TypeGet(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		name, ok := req.Params["name"]
		if !ok || name == "" {
			return api.ErrBadRequest("missing type name")
		}
		d, err := svc.Catalog().Lookup(name)
		if err != nil {
			return err
		}
		payload := apitypes.TypeResponse{Declaration: d}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
