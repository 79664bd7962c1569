// musicman - dual-pane music library and device browser
package main

import (
	"os"

	"github.com/Kadajett/musicManager/internal/cli"
)

// Version information - overridden at build time via -ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cli.Version = Version
	cli.BuildTime = BuildTime
	os.Exit(cli.Execute())
}
