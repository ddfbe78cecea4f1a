package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// TypeSupertypes returns a handler that lists the transitive supertypes
// of a declaration in resolution order.
func TypeSupertypes(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		name, ok := req.Params["name"]
		if !ok || name == "" {
			return api.ErrBadRequest("missing type name")
		}
		supers, err := svc.Catalog().Supertypes(name)
		if err != nil {
			return err
		}
		if supers == nil {
			supers = []string{}
		}
		payload := apitypes.SupertypesResponse{Type: name, Supertypes: supers}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
