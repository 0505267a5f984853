package pjs

import (
	"io"

	"github.com/pjslang/pjs/internal/flushio"
)

// VMOption configures a VM.
type VMOption interface{ apply(vm *VM) }

// VMOptions combines options into one.
type VMOptions []VMOption

func (opts VMOptions) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

var defaultOptions = VMOptions{
	withOutput(io.Discard),
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type documentOption struct{ Document }
type maxStepsOption int
type spawnHookOption func(*Task)

func withOutput(w io.Writer) outputOption { return outputOption{w} }
func withTee(w io.Writer) teeOption       { return teeOption{w} }

func (o outputOption) apply(vm *VM) {
	wf := flushio.NewWriteFlusher(o.Writer)
	if vm.out == nil {
		vm.out = flushio.NewLocked(wf)
		return
	}
	vm.out.Swap(func(flushio.WriteFlusher) flushio.WriteFlusher { return wf })
}

func (o teeOption) apply(vm *VM) {
	wf := flushio.NewWriteFlusher(o.Writer)
	vm.out.Swap(func(prior flushio.WriteFlusher) flushio.WriteFlusher {
		return flushio.Tee(prior, wf)
	})
}

func (o documentOption) apply(vm *VM) { vm.doc = o.Document }
func (n maxStepsOption) apply(vm *VM) { vm.maxSteps = int(n) }
func (f spawnHookOption) apply(vm *VM) {
	vm.spawnHook = f
}
