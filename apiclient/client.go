package apiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apitypes "github.com/stubdex/stubdex/apitypes"
)

// Client provides a high-level interface to the catalog API, handling
// request formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// Types lists all declaration names in the catalog, sorted.
func (c *Client) Types() (*apitypes.TypeListResponse, error) {
	return c.TypesCtx(context.Background())
}

func (c *Client) TypesCtx(ctx context.Context) (*apitypes.TypeListResponse, error) {
	const path = "types"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.TypeListResponse](raw)
}

// Type fetches the full declaration record for one type name. An unknown
// name yields a 404 ApiError, never a nil declaration.
func (c *Client) Type(name string) (*apitypes.TypeResponse, error) {
	return c.TypeCtx(context.Background(), name)
}

func (c *Client) TypeCtx(ctx context.Context, name string) (*apitypes.TypeResponse, error) {
	const path = "type/{name}"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.TypeResponse](raw)
}

// Members resolves the full member view of a type: its own attributes
// and methods plus everything inherited from its supertype chain.
func (c *Client) Members(name string) (*apitypes.MembersResponse, error) {
	return c.MembersCtx(context.Background(), name)
}

func (c *Client) MembersCtx(ctx context.Context, name string) (*apitypes.MembersResponse, error) {
	const path = "type/{name}/members"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.MembersResponse](raw)
}

// Supertypes lists the transitive supertypes of a type in resolution order.
func (c *Client) Supertypes(name string) (*apitypes.SupertypesResponse, error) {
	return c.SupertypesCtx(context.Background(), name)
}

func (c *Client) SupertypesCtx(ctx context.Context, name string) (*apitypes.SupertypesResponse, error) {
	const path = "type/{name}/supertypes"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.SupertypesResponse](raw)
}

// Attr resolves one attribute as seen on the named type, searching the
// supertype chain when the type does not declare it itself.
func (c *Client) Attr(typeName, attr string) (*apitypes.AttrResponse, error) {
	return c.AttrCtx(context.Background(), typeName, attr)
}

func (c *Client) AttrCtx(ctx context.Context, typeName, attr string) (*apitypes.AttrResponse, error) {
	const path = "type/{name}/attr/{attr}"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"name": typeName, "attr": attr})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.AttrResponse](raw)
}

// Method resolves one method as seen on the named type.
func (c *Client) Method(typeName, method string) (*apitypes.MethodResponse, error) {
	return c.MethodCtx(context.Background(), typeName, method)
}

func (c *Client) MethodCtx(ctx context.Context, typeName, method string) (*apitypes.MethodResponse, error) {
	const path = "type/{name}/method/{method}"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"name": typeName, "method": method})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.MethodResponse](raw)
}

// Search matches declaration, attribute and method names against a
// case-insensitive substring query.
func (c *Client) Search(req apitypes.SearchRequest) (*apitypes.SearchResponse, error) {
	return c.SearchCtx(context.Background(), req)
}

func (c *Client) SearchCtx(ctx context.Context, req apitypes.SearchRequest) (*apitypes.SearchResponse, error) {
	const path = "search"
	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, path, string(payloadBytes), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.SearchResponse](raw)
}

// Stats summarizes the server's current snapshot.
func (c *Client) Stats() (*apitypes.StatsResponse, error) {
	return c.StatsCtx(context.Background())
}

func (c *Client) StatsCtx(ctx context.Context) (*apitypes.StatsResponse, error) {
	const path = "stats"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.StatsResponse](raw)
}

// Rescan asks the server to re-read its stub tree and swap in a fresh
// snapshot.
func (c *Client) Rescan() (*apitypes.RescanResponse, error) {
	return c.RescanCtx(context.Background())
}

func (c *Client) RescanCtx(ctx context.Context) (*apitypes.RescanResponse, error) {
	const path = "rescan"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.RescanResponse](raw)
}

// Validate runs the server-side catalog consistency checks.
func (c *Client) Validate() (*apitypes.ValidateResponse, error) {
	return c.ValidateCtx(context.Background())
}

func (c *Client) ValidateCtx(ctx context.Context) (*apitypes.ValidateResponse, error) {
	const path = "validate"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.ValidateResponse](raw)
}

// Events subscribes to snapshot events. The first event describes the
// snapshot current at connect time; later events arrive after every
// rescan until the stream is closed.
func (c *Client) Events(ctx context.Context) (*EventStream, error) {
	conn, err := c.transport.DialStream(ctx, "events", nil)
	if err != nil {
		return nil, err
	}
	return &EventStream{conn: conn, br: bufio.NewReader(conn)}, nil
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
