package cmd

import (
	"fmt"

	"github.com/stubdex/stubdex/internal/version"
)

type Version struct{}

// Run is called by Kong when the version command is executed.
func (v *Version) Run() error {
	fmt.Println("stubdex " + version.Get())
	return nil
}
