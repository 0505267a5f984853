package main

import (
	"os"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

const usage = `pjs

Usage:
  pjs [options] SCRIPT...
  pjs [options] -c COMMAND
  pjs [options]
  pjs -h

Arguments:
  SCRIPT  Path to a program; several run in order, sharing one stack.

Options:
  -c, --command=COMMAND  Run the given program text.
  -d, --document=FILE    Run against an HTML document, after installing its scripts.
  -i, --interactive      Invert interactive mode.
  --html                 Print the document body once everything has finished.
  --trace                Trace every evaluation step to stderr.
  --timeout=DURATION     Abandon everything after DURATION, e.g. 5s.
  --max-steps=N          Abandon any single run after N steps [default: 0].
  -h, --help             Display this help.

Without SCRIPT or COMMAND, and when stdin is a terminal, pjs starts a REPL.
`

type options struct {
	scripts     []string
	command     string
	document    string
	interactive bool
	html        bool
	trace       bool
	timeout     time.Duration
	maxSteps    int
}

func parseOptions(argv []string) (opts options, err error) {
	parsed, err := docopt.ParseArgs(usage, argv, "")
	if err != nil {
		return opts, err
	}

	opts.scripts, _ = parsed["SCRIPT"].([]string)
	opts.command, _ = parsed.String("--command")
	opts.document, _ = parsed.String("--document")
	opts.html, _ = parsed.Bool("--html")
	opts.trace, _ = parsed.Bool("--trace")

	if s, _ := parsed.String("--timeout"); s != "" {
		if opts.timeout, err = time.ParseDuration(s); err != nil {
			return opts, errors.Wrap(err, "--timeout")
		}
	}
	if opts.maxSteps, err = parsed.Int("--max-steps"); err != nil {
		return opts, errors.Wrap(err, "--max-steps")
	}

	if len(opts.scripts) == 0 && opts.command == "" {
		opts.interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	invert, _ := parsed.Bool("--interactive")
	opts.interactive = opts.interactive != invert
	return opts, nil
}
