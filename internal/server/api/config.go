package api

import "time"

// ServerConfig represents the server subcommand configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address" default:":3253" env:"STUBDEX_API_ADDR"`
	RequireAuth       bool          `help:"Reject API connections that skip the auth handshake" default:"false" env:"STUBDEX_API_REQUIRE_AUTH"`
	Password          string        `kong:"-"`
	ConnectionTimeout time.Duration `kong:"-"`
}
