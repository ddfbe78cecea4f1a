package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stubdex/stubdex/apitypes"
	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/server/api"
	"github.com/stubdex/stubdex/internal/server/hub"
)

const defaultSearchLimit = 50

var errSearchLimit = errors.New("search limit reached")

// Search returns a handler that matches declaration, attribute and method
// names against a case-insensitive substring query. The payload is either
// a bare query string or a JSON SearchRequest that narrows kind and limit.
// Results come back in sorted declaration order so repeated queries are
// stable.
func Search(svc *hub.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		sr, err := parseSearchRequest(req.Payload)
		if err != nil {
			return err
		}
		if sr.Query == "" {
			return api.ErrBadRequest("missing search query")
		}
		switch sr.Kind {
		case "", "type", "attr", "method":
		default:
			return api.ErrBadRequest(fmt.Sprintf("unknown search kind: %s", sr.Kind))
		}

		matches := SearchCatalog(svc.Catalog(), sr)
		payload := apitypes.SearchResponse{Query: sr.Query, Count: len(matches), Matches: matches}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

// SearchCatalog collects the matches for a search request directly from
// a catalog. Shared between the search handler and the local search
// command.
func SearchCatalog(c *catalog.Catalog, sr apitypes.SearchRequest) []apitypes.SearchMatch {
	limit := sr.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	needle := strings.ToLower(sr.Query)
	matches := []apitypes.SearchMatch{}
	add := func(m apitypes.SearchMatch) error {
		matches = append(matches, m)
		if len(matches) >= limit {
			return errSearchLimit
		}
		return nil
	}
	_ = c.Walk(func(d *catalog.Declaration) error {
		if sr.Kind == "" || sr.Kind == "type" {
			if strings.Contains(strings.ToLower(d.Name), needle) {
				if err := add(apitypes.SearchMatch{Type: d.Name, Kind: "type", Doc: d.Doc}); err != nil {
					return err
				}
			}
		}
		if sr.Kind == "" || sr.Kind == "attr" {
			for _, name := range d.AttrNames() {
				if !strings.Contains(strings.ToLower(name), needle) {
					continue
				}
				if err := add(apitypes.SearchMatch{Type: d.Name, Member: name, Kind: "attr", Doc: d.Attrs[name].Doc}); err != nil {
					return err
				}
			}
		}
		if sr.Kind == "" || sr.Kind == "method" {
			for i := range d.Methods {
				m := &d.Methods[i]
				if !strings.Contains(strings.ToLower(m.Name), needle) {
					continue
				}
				if err := add(apitypes.SearchMatch{Type: d.Name, Member: m.Name, Kind: "method", Doc: m.Doc}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return matches
}

// parseSearchRequest accepts either a JSON SearchRequest or a bare query
// string, so "search vector" works from a plain TCP client.
func parseSearchRequest(payload string) (apitypes.SearchRequest, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "{") {
		var sr apitypes.SearchRequest
		if err := json.Unmarshal([]byte(payload), &sr); err != nil {
			return apitypes.SearchRequest{}, api.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		return sr, nil
	}
	return apitypes.SearchRequest{Query: payload}, nil
}
