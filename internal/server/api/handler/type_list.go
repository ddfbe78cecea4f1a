package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// TypeList returns a handler that lists all declared type names.
// Error logging is centralized in the API server.
func TypeList(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		c := svc.Catalog()
		names := c.Names()
		if names == nil {
			names = []string{}
		}
		payload := apitypes.TypeListResponse{Count: c.Len(), Types: names}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
