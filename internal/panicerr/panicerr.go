// Package panicerr turns panics and runtime.Goexit calls into ordinary errors.
package panicerr

import (
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"
)

// Recover runs f on its own goroutine and returns its error. A panic inside f
// comes back as a *PanicError; a runtime.Goexit as an ExitError.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer func() {
			// only reached without a send when f called runtime.Goexit
			select {
			case errch <- ExitError(name):
			default:
			}
		}()
		defer func() {
			if e := recover(); e != nil {
				errch <- &PanicError{Name: name, Value: e, Stack: debug.Stack()}
			}
		}()
		errch <- f()
	}()
	return <-errch
}

// PanicError carries a recovered panic value and the stack it was raised on.
type PanicError struct {
	Name  string
	Value interface{}
	Stack []byte
}

func (pe *PanicError) Error() string { return fmt.Sprint(pe) }

// Format prints the panic stack under the %+v verb.
func (pe *PanicError) Format(f fmt.State, c rune) {
	if pe.Name == "" {
		fmt.Fprintf(f, "panic: %v", pe.Value)
	} else {
		fmt.Fprintf(f, "%v panic: %v", pe.Name, pe.Value)
	}
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\n%s", pe.Stack)
	}
}

// Unwrap returns the panic value when it was itself an error.
func (pe *PanicError) Unwrap() error {
	err, _ := pe.Value.(error)
	return err
}

// ExitError reports that the named goroutine called runtime.Goexit.
type ExitError string

func (name ExitError) Error() string {
	if name == "" {
		return "runtime.Goexit called"
	}
	return fmt.Sprintf("%v called runtime.Goexit", string(name))
}

// IsPanic reports whether err came from a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsExit reports whether err came from a recovered runtime.Goexit.
func IsExit(err error) bool {
	var xe ExitError
	return errors.As(err, &xe)
}

// PanicStack returns the stack of a recovered panic, or "".
func PanicStack(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return string(pe.Stack)
	}
	return ""
}
