package main

import (
	"os"

	"github.com/dgallion1/docforge/internal/cli"
)

// Version is set at build time.
var Version = "dev"

func main() {
	os.Exit(cli.Execute(Version))
}
