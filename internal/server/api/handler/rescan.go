package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// Rescan returns a handler that re-reads the stub tree and swaps in the
// resulting snapshot. Subscribers on the event stream see the swap.
func Rescan(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		snap, changed, err := svc.Rescan(req.Ctx)
		if err != nil {
			return err
		}
		if changed == nil {
			changed = []string{}
		}
		payload := apitypes.RescanResponse{
			SnapshotID: snap.ID,
			Parsed:     changed,
			Types:      snap.Catalog.Len(),
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
