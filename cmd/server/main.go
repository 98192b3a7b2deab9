package main // Entry point package

import (
	"fmt"
	"os"

	"github.com/iliyamo/oxbridge-lms/internal/cli" // Command tree: serve, consume, catalog, deeplink
)

func main() {
	root := cli.NewRootCommand()
	if len(os.Args) == 1 { // bare binary keeps the old behaviour of starting the server
		root.SetArgs([]string{"serve"})
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
