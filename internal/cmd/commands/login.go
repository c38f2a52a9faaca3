package commands

import (
	"encoding/json"
	"fmt"

	"github.com/imajkumar/portalclient/credentials"
	"github.com/imajkumar/portalclient/internal/cmd/base"
)

// LoginCommand stores credentials for later commands.
type LoginCommand struct {
	*base.Command

	flagToken        string
	flagRefreshToken string
	flagUser         string
}

func (c *LoginCommand) Synopsis() string {
	return "Store an access token"
}

func (c *LoginCommand) Help() string {
	return `Usage: portalctl login -token <token> [options]

  Saves the access token (and optionally the refresh token and user profile)
  to the credentials file. Later commands send it as a bearer token.` +
		c.Flags().Help()
}

func (c *LoginCommand) Flags() *base.FlagSet {
	f := c.NewCommandFlagSet("login")
	f.StringVar(&c.flagToken, "token", "", "(Required) Access token.")
	f.StringVar(&c.flagRefreshToken, "refresh-token", "", "Refresh token.")
	f.StringVar(&c.flagUser, "user", "", "User profile as a JSON object.")
	return f
}

func (c *LoginCommand) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagToken == "" {
		ui.Error("token flag is required")
		return 1
	}

	creds := credentials.Credentials{
		AccessToken:  c.flagToken,
		RefreshToken: c.flagRefreshToken,
	}
	if c.flagUser != "" {
		if !json.Valid([]byte(c.flagUser)) {
			ui.Error("user flag must be valid JSON")
			return 1
		}
		creds.User = json.RawMessage(c.flagUser)
	}

	store := c.CredentialStore()
	if err := store.Save(creds); err != nil {
		ui.Error(err.Error())
		return 1
	}

	c.Log.Debug("saved credentials", "path", store.Path())
	ui.Output(fmt.Sprintf("Saved credentials to %s", store.Path()))
	return 0
}

// LogoutCommand removes stored credentials.
type LogoutCommand struct {
	*base.Command
}

func (c *LogoutCommand) Synopsis() string {
	return "Remove stored credentials"
}

func (c *LogoutCommand) Help() string {
	return `Usage: portalctl logout [options]

  Deletes the credentials file.` + c.Flags().Help()
}

func (c *LogoutCommand) Flags() *base.FlagSet {
	return c.NewCommandFlagSet("logout")
}

func (c *LogoutCommand) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if err := c.CredentialStore().Clear(); err != nil {
		ui.Error(err.Error())
		return 1
	}
	ui.Output("Signed out")
	return 0
}
