package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// Validate returns a handler that runs the catalog consistency checks
// and reports every finding. An empty findings list means the catalog is
// closed and internally consistent.
func Validate(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		findings := svc.Catalog().Validate()
		payload := apitypes.ValidateResponse{
			Count:    len(findings),
			Findings: findings,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
