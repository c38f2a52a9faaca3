// Package cmd is the entry point of portalctl.
package cmd

import (
	"bufio"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/imajkumar/portalclient"
	"github.com/imajkumar/portalclient/internal/cmd/base"
	"github.com/imajkumar/portalclient/internal/cmd/commands"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := args[0]

	log := hclog.New(&hclog.LoggerOptions{
		Name:  cliName,
		Level: hclog.LevelFromString(os.Getenv("PORTAL_LOG_LEVEL")),
	})

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	return Run(args, &base.Command{
		Log:     log,
		UI:      ui,
		Fs:      afero.NewOsFs(),
		Environ: os.Environ(),
	})
}

// Run runs the CLI against the supplied dependencies.
func Run(args []string, b *base.Command) int {
	cliName := args[0]

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{cliName, "version"}
	}

	c := &cli.CLI{
		Name:     cliName,
		Args:     args[1:],
		Version:  portalclient.Version,
		Commands: commands.Factories(b),
		HelpFunc: cli.BasicHelpFunc(cliName),
	}

	exitCode, err := c.Run()
	if err != nil {
		b.UI.Error(err.Error())
		return 1
	}

	return exitCode
}
