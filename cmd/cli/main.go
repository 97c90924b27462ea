package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/grapevine/internal/cli"
	"github.com/dmitrijs2005/grapevine/internal/logging"
	"github.com/dmitrijs2005/grapevine/internal/server"
	"github.com/dmitrijs2005/grapevine/internal/server/config"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cli.ErrUsage) {
			cli.Usage(os.Stderr)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configArgs, command, err := cli.SplitArgs(os.Args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(configArgs, os.Getenv)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	core, err := server.NewCore(ctx, cfg, logging.NewJSON(os.Stderr, "warn"))
	if err != nil {
		return err
	}
	defer core.Close()

	return cli.NewApp(core.Users, os.Stdout).Run(ctx, command)
}
