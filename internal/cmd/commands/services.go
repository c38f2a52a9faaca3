package commands

import (
	"fmt"

	"github.com/imajkumar/portalclient/internal/cmd/base"
)

// ServicesCommand lists the configured service registry.
type ServicesCommand struct {
	*base.Command
}

func (c *ServicesCommand) Synopsis() string {
	return "List the configured backend services"
}

func (c *ServicesCommand) Help() string {
	return `Usage: portalctl services [options]

  Prints every service of the registry with its base URL, after environment
  overrides are applied.` + c.Flags().Help()
}

func (c *ServicesCommand) Flags() *base.FlagSet {
	return c.NewCommandFlagSet("services")
}

func (c *ServicesCommand) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		ui.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}
	registry, err := cfg.Registry()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	for _, name := range registry.Names() {
		baseURL, _ := registry.BaseURL(name)
		ui.Output(fmt.Sprintf("%s\t%s", name, baseURL))
	}
	return 0
}
