package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

// Stats returns a handler that summarizes the current snapshot: which
// scan produced it and how much it holds.
func Stats(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		snap := svc.Snapshot()
		var attrs, methods int
		_ = snap.Catalog.Walk(func(d *catalog.Declaration) error {
			attrs += len(d.Attrs)
			methods += len(d.Methods)
			return nil
		})
		payload := apitypes.StatsResponse{
			SnapshotID: snap.ID,
			Created:    snap.Created,
			Tool:       snap.Tool,
			Types:      snap.Catalog.Len(),
			Files:      len(snap.Files),
			Attrs:      attrs,
			Methods:    methods,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
