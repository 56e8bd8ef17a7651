package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/companion-go/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose()}

	root, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// isVerbose runs before cobra parses flags because the logger is built with the container.
func isVerbose() bool {
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" || arg == "--verbose=true" {
			return true
		}
	}
	v := os.Getenv("COMPANION_DEBUG")
	return strings.EqualFold(v, "1") || strings.EqualFold(v, "true")
}
