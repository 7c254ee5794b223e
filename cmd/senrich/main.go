// Command senrich enriches a text collection: it normalizes every file,
// splits it into tokenized sentences and runs named-entity recognition and
// disambiguation on the result through an external tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
)

// Exit statuses.
const (
	exitOK     = 0
	exitRun    = 1
	exitConfig = 2
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command with args and maps its error to an exit
// status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, internalerr.ErrInvalidConfig):
		return exitConfig
	default:
		return exitRun
	}
}
