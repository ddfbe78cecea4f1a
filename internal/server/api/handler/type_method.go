package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// TypeMethod returns a handler that resolves a single method as seen on
// a declaration, searching its supertype chain when the declaration does
// not define it itself.
func TypeMethod(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		name, ok := req.Params["name"]
		if !ok || name == "" {
			return api.ErrBadRequest("missing type name")
		}
		method, ok := req.Params["method"]
		if !ok || method == "" {
			return api.ErrBadRequest("missing method name")
		}
		m, err := svc.Catalog().ResolveMethod(name, method)
		if err != nil {
			return err
		}
		payload := apitypes.MethodResponse{Type: name, Method: *m}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
