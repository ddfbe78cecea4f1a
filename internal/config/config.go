// Package config declares the root CLI structure of the stubdex binary.
package config

import "github.com/stubdex/stubdex/internal/cmd"

// CLI is the root Kong command structure for the stubdex binary.
type CLI struct {
	Log struct {
		Level    string `help:"Log level: trace, debug, info, warn or error" default:"info" env:"STUBDEX_LOG_LEVEL"`
		File     string `help:"Write logs to this file instead of the console" env:"STUBDEX_LOG_FILE"`
		WireFile string `help:"Write wire protocol frames to this file" env:"STUBDEX_LOG_WIRE_FILE"`
	} `embed:"" prefix:"log."`

	Config string `help:"Load configuration from this file before flags" type:"path"`

	Server    cmd.Server        `cmd:"" help:"Serve the type catalog over the TCP API"`
	Proxy     cmd.Proxy         `cmd:"" help:"Relay API traffic to an upstream server with protocol logging"`
	Scan      cmd.Scan          `cmd:"" help:"Scan a stub tree and update the index"`
	Validate  cmd.Validate      `cmd:"" aliases:"vet" help:"Check catalog closure and report findings"`
	Get       cmd.Get           `cmd:"" help:"Look up a declaration or one of its members"`
	Search    cmd.Search        `cmd:"" help:"Search type and member names"`
	Generate  cmd.Generate      `cmd:"" help:"Generate language bindings from the catalog"`
	Bundle    cmd.Bundle        `cmd:"" help:"Export or import catalog bundles"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Manage configuration files"`
	Install   cmd.Install       `cmd:"" help:"Install stubdex as a system service"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Remove the stubdex system service"`
	Version   cmd.Version       `cmd:"" help:"Print the stubdex version"`
}
