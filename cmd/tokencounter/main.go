package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/common-creation/tokencounter/cmd"
)

// Version information (populated during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
