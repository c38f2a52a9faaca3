package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/imajkumar/portalclient"
	"github.com/imajkumar/portalclient/internal/cmd/base"
)

// GetCommand performs a GET against a service and prints the envelope.
type GetCommand struct {
	*base.Command

	flagPage   int
	flagLimit  int
	flagParams paramsFlag
}

func (c *GetCommand) Synopsis() string {
	return "GET a path of a backend service"
}

func (c *GetCommand) Help() string {
	return `Usage: portalctl get [options] <service> <path>

  Performs a GET request against the service and prints the response
  envelope as JSON. With -page the response is read as a paginated list;
  pages are zero-based.` + c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	f := c.NewCommandFlagSet("get")
	f.IntVar(&c.flagPage, "page", -1, "Zero-based page to request. Enables paginated output.")
	f.IntVar(&c.flagLimit, "limit", 0, "Page size, sent with -page.")
	f.Var(&c.flagParams, "param", "Query parameter as key=value. May be repeated.")
	return f
}

func (c *GetCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 2 {
		ui.Error("get requires a service and a path")
		return 1
	}
	service, path := portalclient.ServiceName(flags.Arg(0)), flags.Arg(1)

	client, err := c.NewClient()
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	opts := []portalclient.CallOption{portalclient.WithQuery(c.flagParams)}
	var result interface{}
	if c.flagPage >= 0 {
		opts = append(opts, portalclient.WithParam("page", strconv.Itoa(c.flagPage)))
		if c.flagLimit > 0 {
			opts = append(opts, portalclient.WithParam("limit", strconv.Itoa(c.flagLimit)))
		}
		result, err = portalclient.GetPaginated[any](context.Background(), client, service, path, opts...)
	} else {
		result, err = portalclient.Get[any](context.Background(), client, service, path, opts...)
	}
	if err != nil {
		return reportError(ui, err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		ui.Error(fmt.Sprintf("error encoding response: %v", err))
		return 1
	}
	ui.Output(string(out))
	return 0
}

// paramsFlag collects repeated key=value flags.
type paramsFlag map[string]string

var _ flag.Value = (*paramsFlag)(nil)

func (p *paramsFlag) String() string {
	if p == nil {
		return ""
	}
	pairs := make([]string, 0, len(*p))
	for k, v := range *p {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (p *paramsFlag) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	if *p == nil {
		*p = make(paramsFlag)
	}
	(*p)[k] = v
	return nil
}
