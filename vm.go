package pjs

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/pjslang/pjs/internal/flushio"
	"github.com/pjslang/pjs/internal/panicerr"
)

// VM evaluates programs. A VM holds no program state of its own: every Run
// threads an explicit State through the step loop, so one VM may serve many
// concurrent runs, including the tasks spawned by "&".
type VM struct {
	logging

	out *flushio.Locked

	doc       Document
	maxSteps  int
	spawnHook func(*Task)

	tasks taskGroup
}

// State is everything a step needs: the selection, what runs next, the data
// stack and the global dictionary.
type State struct {
	Selection Selection
	Cont      *Cont
	Data      *Stack
	Dict      *Dictionary
}

// Push returns st with v pushed onto the data stack.
func (st State) Push(vs ...Value) State {
	for _, v := range vs {
		st.Data = st.Data.Push(v)
	}
	return st
}

// Document returns the host document, if any.
func (vm *VM) Document() Document { return vm.doc }

// Run evaluates prog against sel, starting from data, and returns the final
// data stack. A nil dict is replaced by an empty dictionary. Any failure
// abandons the run; no partial stack is returned.
func (vm *VM) Run(ctx context.Context, sel Selection, prog Program, data *Stack, dict *Dictionary) (*Stack, error) {
	if dict == nil {
		dict = NewDictionary()
	}
	st := State{
		Selection: sel,
		Cont:      ListOf(ProgramFrame(prog)),
		Data:      data,
		Dict:      dict,
	}
	err := panicerr.Recover("pjs", func() (err error) {
		st, err = vm.eval(ctx, st)
		return err
	})
	if ferr := vm.flush(); err == nil {
		err = ferr
	}
	if err != nil {
		vm.logf("#", "halt error: %v", err)
		return nil, err
	}
	return st.Data, nil
}

// Eval compiles src and runs it.
func (vm *VM) Eval(ctx context.Context, sel Selection, src string, data *Stack, dict *Dictionary) (*Stack, error) {
	terms, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return vm.Run(ctx, sel, NewProgram(terms), data, dict)
}

// Continue drives st until its continuation stack is empty. Hosts use it to
// resume a state captured by a handler.
func (vm *VM) Continue(ctx context.Context, st State) (State, error) {
	return vm.eval(ctx, st)
}

func (vm *VM) eval(ctx context.Context, st State) (State, error) {
	for steps := 0; st.Cont != nil; steps++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if vm.maxSteps > 0 && steps >= vm.maxSteps {
			return st, ErrStepLimit
		}
		next, err := vm.step(ctx, st)
		if err != nil {
			return st, err
		}
		st = next
	}
	return st, nil
}

func (vm *VM) step(ctx context.Context, st State) (State, error) {
	frame, rest, _ := st.Cont.Pop()
	if frame.Native != nil {
		st.Cont = rest
		if vm.logfn != nil {
			vm.logf("<", "%v -- d:%v c:%v", frame.Name, formatStack(st.Data), st.Cont.Len())
		}
		return frame.Native(ctx, vm, st)
	}

	if frame.Program.Done() {
		st.Cont = rest
		return st, nil
	}

	term, next := frame.Program.Next()
	st.Cont = rest.Push(ProgramFrame(next))
	if vm.logfn != nil {
		vm.logf(">", "%v -- d:%v c:%v", term, formatStack(st.Data), st.Cont.Len())
	}
	after, err := vm.evalTerm(ctx, term, st)
	if err != nil {
		return st, &EvalError{Term: term, Err: err}
	}
	return after, nil
}

func (vm *VM) evalTerm(ctx context.Context, term Term, st State) (State, error) {
	switch t := term.(type) {
	case NumberLit:
		return st.Push(Number(t.Value)), nil
	case StringLit:
		return st.Push(Text(t.Text)), nil
	case Word:
		return vm.callWord(ctx, t.Name, st)
	case Define:
		return vm.define(ctx, t, st)
	case FieldGet:
		return fieldGet(t.Name, st), nil
	case FieldSet:
		return fieldSet(t.Name, st)
	case AttrGet:
		return vm.callWord(ctx, "@", st.Push(Text(t.Name)))
	case AttrSet:
		return vm.callWord(ctx, "@=", st.Push(Text(t.Name)))
	case OnEvent:
		return vm.callWord(ctx, "~on", st.Push(Text(t.Event)))
	case TagOpen:
		return vm.tagOpen(t.Name, st)
	case TagSelfClosed:
		return vm.tagSelfClosed(t.Name, st)
	case TagClose:
		return tagClose(t.Name, st)
	case Group:
		return evalGroup(t, st), nil
	}
	return st, errors.Errorf("unsupported term %T", term)
}

func evalGroup(g Group, st State) State {
	switch g.Kind {
	case QuoteBlock:
		return st.Push(QuoteOf(g.Terms))
	case ArrayBlock:
		st.Cont = st.Cont.
			Push(NativeFrame("]", collectArray(st.Data))).
			Push(ProgramFrame(NewProgram(g.Terms)))
		return st
	default:
		st.Cont = st.Cont.Push(ProgramFrame(NewProgram(g.Terms)))
		return st
	}
}

// collectArray gathers everything pushed above marker into one array.
func collectArray(marker *Stack) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		var items Array
		data := st.Data
		for data != marker {
			v, rest, ok := data.Pop()
			if !ok {
				return st, &StackShapeError{"[", "array block consumed values from below its start"}
			}
			items = append(items, v)
			data = rest
		}
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		if items == nil {
			items = Array{}
		}
		st.Data = marker.Push(items)
		return st, nil
	}
}

// Write writes to the VM output, serialized across concurrent runs.
func (vm *VM) Write(p []byte) (int, error) { return vm.out.Write(p) }

func (vm *VM) flush() error { return vm.out.Flush() }

var _ io.Writer = (*VM)(nil)

func formatStack(data *Stack) string {
	items := data.Slice()
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = Literal(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
