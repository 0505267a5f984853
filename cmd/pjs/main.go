// Command pjs runs programs against an HTML document, or explores them in a
// REPL.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/pjslang/pjs"
	"github.com/pjslang/pjs/dom"
	"github.com/pjslang/pjs/internal/logio"
)

func main() {
	log := logio.NewLogger(os.Stderr)
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(log.ExitCode())
	}
	log.ErrorIf(run(opts, log))
	os.Exit(log.ExitCode())
}

func run(opts options, log *logio.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if opts.timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	doc, err := loadDocument(opts.document)
	if err != nil {
		return err
	}

	vmOpts := []pjs.VMOption{
		pjs.WithOutput(os.Stdout),
		pjs.WithDocument(doc),
		pjs.WithMaxSteps(opts.maxSteps),
		pjs.WithSpawnHook(func(t *pjs.Task) {
			go func() {
				<-t.Done()
				if err := t.Err(); err != nil {
					log.Errorf("%v: %v", t, err)
				}
			}()
		}),
	}
	if opts.trace {
		vmOpts = append(vmOpts, pjs.WithLogf(log.Leveledf("TRACE")))
	}
	vm := pjs.New(vmOpts...)
	dict := pjs.NewDictionary(pjs.Core, dom.Words, dom.FetchWords(dom.HTTPFetcher{}))

	// tasks are left to the spawn hook to report
	defer func() {
		go func() {
			<-ctx.Done()
			vm.CancelTasks()
		}()
		_ = vm.Wait()
		if opts.html {
			log.ErrorIf(doc.RenderBody(os.Stdout))
			os.Stdout.WriteString("\n")
		}
	}()

	if opts.document != "" {
		if _, err := dom.Install(ctx, vm, doc, dict); err != nil {
			return err
		}
	}

	var data *pjs.Stack
	for _, script := range opts.scripts {
		src, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		if data, err = vm.Eval(ctx, nil, string(src), data, dict); err != nil {
			return errors.Wrap(err, script)
		}
	}

	switch {
	case opts.command != "":
		_, err = vm.Eval(ctx, nil, opts.command, data, dict)
		return err
	case opts.interactive:
		return repl(ctx, vm, dict, log)
	case len(opts.scripts) == 0:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		_, err = vm.Eval(ctx, nil, string(src), nil, dict)
		return err
	}
	return nil
}

func loadDocument(path string) (*dom.Document, error) {
	if path == "" {
		return dom.New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}
