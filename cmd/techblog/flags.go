package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

const usage = `Usage: techblog <command> [flags]

Commands:
  serve   render pages on request
  build   export the site as static HTML

Flags:
`

type cliFlags struct {
	command    string
	config     string
	addr       string
	out        string
	liveReload bool
	logLevel   string
}

var errHelp = errors.New("help requested")

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("techblog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.config, "config", "c", "site.yaml", "path to the site config")
	fs.StringVar(&f.addr, "addr", "", "listen address (serve), overrides serve.addr")
	fs.StringVarP(&f.out, "out", "o", "", "output directory (build), overrides build.public_dir")
	fs.BoolVar(&f.liveReload, "live-reload", false, "reload browsers when content changes (serve)")
	fs.StringVar(&f.logLevel, "log-level", "", "overrides log.level")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return f, errHelp
		}
		return f, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return f, errors.New("missing command")
	}
	switch rest[0] {
	case "serve", "build":
		f.command = rest[0]
	default:
		fs.Usage()
		return f, fmt.Errorf("unknown command %q", rest[0])
	}
	if len(rest) > 1 {
		return f, fmt.Errorf("unexpected arguments: %v", rest[1:])
	}
	return f, nil
}
