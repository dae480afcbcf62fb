package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/getsidinfo/internal/config"
	"github.com/jacoelho/getsidinfo/internal/console"
	"github.com/jacoelho/getsidinfo/internal/report"
)

func main() {
	// Attach before anything is printed so help text reaches the console.
	if config.RequestsAttach(os.Args) {
		_ = console.AttachParent()
	}

	exitCode := run(os.Args, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, exitResult := config.Parse(args)
	if exitResult != nil {
		if exitResult.ExitCode == 0 {
			exitResult.WithOutput(stdout)
		} else {
			exitResult.WithOutput(stderr)
		}
		exitResult.Print()
		return exitResult.ExitCode
	}

	r := report.New(cfg)
	r.SetOutput(stdout)
	r.SetErrorOutput(stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx)
}
