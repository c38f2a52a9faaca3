package main

import (
	"os"

	"github.com/imajkumar/portalclient/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
