package pjs

import (
	"context"
	"io"
)

// New creates a VM; without options it has no document and discards output.
func New(opts ...VMOption) *VM {
	var vm VM
	defaultOptions.apply(&vm)
	VMOptions(opts).apply(&vm)
	return &vm
}

// Run evaluates prog on a fresh VM; see VM.Run.
func Run(ctx context.Context, sel Selection, prog Program, data *Stack, dict *Dictionary) (*Stack, error) {
	return New().Run(ctx, sel, prog, data, dict)
}

// WithOutput sets where "log" and "dump" write.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee copies output to an additional writer.
func WithTee(w io.Writer) VMOption { return withTee(w) }

// WithDocument sets the host document that tags create objects in and that
// scoped definitions query.
func WithDocument(doc Document) VMOption { return documentOption{doc} }

// WithMaxSteps bounds the number of steps a single Run may take; 0 means no
// limit.
func WithMaxSteps(n int) VMOption { return maxStepsOption(n) }

// WithSpawnHook is called with every task started by "&".
func WithSpawnHook(hook func(*Task)) VMOption { return spawnHookOption(hook) }

// WithLogf enables trace logging.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
