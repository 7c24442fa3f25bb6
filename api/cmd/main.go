package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"computerclub/internal/config"
	"computerclub/internal/parser"
	"computerclub/internal/system"
)

func main() {
	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		config.Exitf("Error: %v", err)
	}
	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = system.Run(ctx, cfg, os.Stdout, os.Stderr)
	stop()

	var perr *parser.Error
	switch {
	case err == nil:
	case errors.As(err, &perr):
		// the offending line, if any, is already on stdout
		os.Exit(1)
	default:
		config.Exitf("Error: %v", err)
	}
}
