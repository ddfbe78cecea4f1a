package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// TypeMembers returns a handler that resolves the full member view of a
// declaration, own members plus everything inherited from supertypes.
func TypeMembers(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		name, ok := req.Params["name"]
		if !ok || name == "" {
			return api.ErrBadRequest("missing type name")
		}
		ms, err := svc.Catalog().Members(name)
		if err != nil {
			return err
		}
		payload := apitypes.MembersResponse{Type: name, Members: ms}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
