package commands

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/imajkumar/portalclient"
	"github.com/imajkumar/portalclient/internal/cmd/base"
)

// DownloadCommand saves the raw body of a GET to a file.
type DownloadCommand struct {
	*base.Command
}

func (c *DownloadCommand) Synopsis() string {
	return "Download a file from a backend service"
}

func (c *DownloadCommand) Help() string {
	return `Usage: portalctl download [options] <service> <path> <file>

  Performs a GET request and writes the response body to <file> unchanged.` +
		c.Flags().Help()
}

func (c *DownloadCommand) Flags() *base.FlagSet {
	return c.NewCommandFlagSet("download")
}

func (c *DownloadCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 3 {
		ui.Error("download requires a service, a path and an output file")
		return 1
	}
	service, path, file := portalclient.ServiceName(flags.Arg(0)), flags.Arg(1), flags.Arg(2)

	client, err := c.NewClient()
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	data, err := client.Download(context.Background(), service, path)
	if err != nil {
		return reportError(ui, err)
	}
	if err := afero.WriteFile(c.Fs, file, data, 0o644); err != nil {
		ui.Error(fmt.Sprintf("error writing %s: %v", file, err))
		return 1
	}

	ui.Output(fmt.Sprintf("Wrote %d bytes to %s", len(data), file))
	return 0
}
