// Package commands implements the portalctl subcommands.
package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/mitchellh/cli"

	"github.com/imajkumar/portalclient"
	"github.com/imajkumar/portalclient/internal/cmd/base"
)

// Factories returns the command factories for every subcommand.
func Factories(b *base.Command) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"services": func() (cli.Command, error) {
			return &ServicesCommand{Command: b}, nil
		},
		"get": func() (cli.Command, error) {
			return &GetCommand{Command: b}, nil
		},
		"download": func() (cli.Command, error) {
			return &DownloadCommand{Command: b}, nil
		},
		"login": func() (cli.Command, error) {
			return &LoginCommand{Command: b}, nil
		},
		"logout": func() (cli.Command, error) {
			return &LogoutCommand{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Command: b}, nil
		},
	}
}

// reportError prints a failed call. Normalized errors are printed in their
// wire form.
func reportError(ui cli.Ui, err error) int {
	if ne, ok := portalclient.AsNormalized(err); ok {
		if body, jerr := json.Marshal(ne); jerr == nil {
			ui.Error(string(body))
			return 1
		}
	}
	ui.Error(fmt.Sprintf("request failed: %v", err))
	return 1
}

// VersionCommand prints build information.
type VersionCommand struct {
	*base.Command
}

func (c *VersionCommand) Synopsis() string {
	return "Print the portalctl version"
}

func (c *VersionCommand) Help() string {
	return "Usage: portalctl version [-json]" + c.Flags(new(bool)).Help()
}

func (c *VersionCommand) Flags(asJSON *bool) *base.FlagSet {
	f := flag.NewFlagSet("version", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.BoolVar(asJSON, "json", false, "Print build information as JSON.")
	return base.NewFlagSet(f)
}

func (c *VersionCommand) Run(args []string) int {
	var asJSON bool
	if err := c.Flags(&asJSON).Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if !asJSON {
		c.UI.Output(portalclient.GetVersion())
		return 0
	}
	body, err := json.Marshal(portalclient.GetVersionInfo())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding version: %v", err))
		return 1
	}
	c.UI.Output(string(body))
	return 0
}
