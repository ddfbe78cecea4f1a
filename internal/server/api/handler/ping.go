package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/version"
)

// Ping returns a handler that reports server identity and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		payload := apitypes.PingResponse{Server: "stubdex", Version: version.Get()}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
