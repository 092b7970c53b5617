package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/automaxprocs/maxprocs"

	"techblog/internal/domain/config"
	domainerr "techblog/internal/domain/errors"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, errHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	cfg, err := config.LoadOrDefault(flags.config)
	if err != nil {
		return reportConfigError(os.Stderr, err)
	}
	applyOverrides(&cfg, flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flags.command {
	case "serve":
		err = serveCmd(ctx, cfg, flags.addr)
	case "build":
		err = buildCmd(ctx, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", flags.command, err)
		return 1
	}
	return 0
}

// reportConfigError prints err once and returns the exit code: 2 for an
// invalid config, 1 for anything else.
func reportConfigError(w io.Writer, err error) int {
	var ve domainerr.ValidationError
	if errors.As(err, &ve) && goerrors.IsCategory(ve.Categorized(), goerrors.CategoryValidation) {
		fmt.Fprint(w, ve.Error())
		return 2
	}
	fmt.Fprintln(w, "load config:", err)
	return 1
}

func applyOverrides(cfg *config.Config, f cliFlags) {
	if f.addr != "" {
		cfg.Serve.Addr = f.addr
	}
	if f.out != "" {
		cfg.Build.PublicDir = f.out
	}
	if f.liveReload {
		cfg.Serve.LiveReload = true
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}
