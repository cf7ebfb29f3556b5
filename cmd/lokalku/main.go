// Command lokalku is the LokalKu chat client and dialogue gateway.
//
// Usage:
//
//	GEMINI_API_KEY=... lokalku chat              interactive chat panel
//	GEMINI_API_KEY=... lokalku ask "apotek 24 jam?"
//	GEMINI_API_KEY=... lokalku serve --listen :8080
//	lokalku history [show|clear]
//
// Settings come from ~/.lokalku/config.yaml, .env, LOKALKU_* variables and
// flags, in increasing order of precedence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lokalku: %v\n", err)
		os.Exit(1)
	}
}
