package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/stubdex/stubdex/apiclient"
	"github.com/stubdex/stubdex/apitypes"
)

func remoteClient(addr, password string) *apiclient.Client {
	if password != "" {
		return apiclient.NewWithPassword(addr, password)
	}
	return apiclient.New(addr)
}

// withAuthRetry runs fn against the remote server. When the server
// rejects an anonymous request and stdin is a terminal, the user is
// prompted for the API password once and fn runs again.
func withAuthRetry(addr, password string, fn func(*apiclient.Client) error) error {
	err := fn(remoteClient(addr, password))
	if err == nil || password != "" || !isAPIStatus(err, 401) {
		return err
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return err
	}
	fmt.Fprint(os.Stderr, "API password: ")
	pwd, rerr := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if rerr != nil {
		return err
	}
	return fn(remoteClient(addr, strings.TrimSpace(string(pwd))))
}

// isAPIStatus reports whether err is a problem response with the given
// status. The transport surfaces both value and pointer forms.
func isAPIStatus(err error, status int) bool {
	var pe *apitypes.ApiError
	if errors.As(err, &pe) {
		return pe.Status == status
	}
	var ve apitypes.ApiError
	if errors.As(err, &ve) {
		return ve.Status == status
	}
	return false
}
