package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/atelier/internal/cli"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The store and the log are opened by the root command from
	// ~/.atelier/config.yaml, ATELIER_* variables and flags.
	app := &cli.App{}
	defer app.Close()

	// Detect interactive terminal for the TUI entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
