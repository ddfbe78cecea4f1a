package apitypes

import (
	"fmt"
	"time"

	"github.com/stubdex/stubdex/catalog"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type TypeListResponse struct {
	Count int      `json:"count"`
	Types []string `json:"types"`
}

// TypeResponse carries one declaration exactly as stored in the catalog.
type TypeResponse struct {
	Declaration *catalog.Declaration `json:"declaration"`
}

type SupertypesResponse struct {
	Type       string   `json:"type"`
	Supertypes []string `json:"supertypes"`
}

// MembersResponse is the resolved member view of a type: own members plus
// everything inherited from its supertypes.
type MembersResponse struct {
	Type    string             `json:"type"`
	Members *catalog.MemberSet `json:"members"`
}

type AttrResponse struct {
	Type string            `json:"type"`
	Name string            `json:"name"`
	Attr catalog.Attribute `json:"attr"`
}

type MethodResponse struct {
	Type   string         `json:"type"`
	Method catalog.Method `json:"method"`
}

// SearchRequest selects declarations and members by substring match.
// Kind narrows the search to "type", "attr" or "method"; empty means all.
type SearchRequest struct {
	Query string `json:"query"`
	Kind  string `json:"kind,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type SearchMatch struct {
	Type   string `json:"type"`
	Member string `json:"member,omitempty"`
	Kind   string `json:"kind"`
	Doc    string `json:"doc,omitempty"`
}

type SearchResponse struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Matches []SearchMatch `json:"matches"`
}

type StatsResponse struct {
	SnapshotID string    `json:"snapshotId"`
	Created    time.Time `json:"created"`
	Tool       string    `json:"tool,omitempty"`
	Types      int       `json:"types"`
	Files      int       `json:"files"`
	Attrs      int       `json:"attributes"`
	Methods    int       `json:"methods"`
}

// RescanResponse reports the outcome of an on-demand rescan. Parsed lists
// the stub files that were re-read because their digest changed.
type RescanResponse struct {
	SnapshotID string   `json:"snapshotId"`
	Parsed     []string `json:"parsed,omitempty"`
	Types      int      `json:"types"`
}

type ValidateResponse struct {
	Count    int               `json:"count"`
	Findings []catalog.Finding `json:"findings,omitempty"`
}

// SnapshotEvent is pushed on the events stream whenever the service swaps
// in a new snapshot.
type SnapshotEvent struct {
	SnapshotID string    `json:"snapshotId"`
	Created    time.Time `json:"created"`
	Types      int       `json:"types"`
	Changed    []string  `json:"changed,omitempty"`
}
