package pjs

import (
	"context"

	"github.com/pkg/errors"
)

type objectWord struct {
	obj Object
	h   Handler
}

// callWord resolves name against the private dictionaries of the selection
// first; only when no selected object defines it is the global dictionary
// consulted, over the whole selection.
func (vm *VM) callWord(ctx context.Context, name string, st State) (State, error) {
	var matched []objectWord
	for _, obj := range st.Selection {
		if h, ok := obj.objectCore().Lookup(name); ok {
			matched = append(matched, objectWord{obj, h})
		}
	}
	if len(matched) > 0 {
		return vm.callEach(ctx, name, matched, st)
	}

	h, ok := st.Dict.Lookup(name)
	if !ok {
		return st, &ResolutionError{Word: name}
	}
	return h(ctx, vm, st)
}

// callEach runs each matched handler in turn with its own object as the
// selection, threading the data stack from one to the next, then restores
// the original selection.
func (vm *VM) callEach(ctx context.Context, name string, matched []objectWord, st State) (State, error) {
	cont := st.Cont.Push(NativeFrame("select", restoreSelection(st.Selection)))
	for i := len(matched) - 1; i > 0; i-- {
		cont = cont.Push(NativeFrame(name, matched[i].invoke))
	}
	st.Cont = cont
	return matched[0].invoke(ctx, vm, st)
}

func (ow objectWord) invoke(ctx context.Context, vm *VM, st State) (State, error) {
	st.Selection = Selection{ow.obj}
	return ow.h(ctx, vm, st)
}

func restoreSelection(sel Selection) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		st.Selection = sel
		return st, nil
	}
}

// Closure makes a handler that runs terms in place.
func Closure(terms []Term) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		st.Cont = st.Cont.Push(ProgramFrame(NewProgram(terms)))
		return st, nil
	}
}

// define implements ":name" and ":.name". The body is a quote on top of the
// stack, optionally covered by a selector text naming target objects; failing
// that, a block written directly after the definition word is taken as the
// body.
func (vm *VM) define(ctx context.Context, t Define, st State) (State, error) {
	op := t.String()
	var (
		body     Quote
		selector Text
		explicit bool
	)

	top, rest, _ := st.Data.Pop()
	if sel, isText := top.(Text); isText {
		if q, under, _ := rest.Pop(); isQuote(q) {
			selector, explicit = sel, true
			body = q.(Quote)
			st.Data = under
		}
	}
	if !explicit {
		if q, isQ := top.(Quote); isQ {
			body = q
			st.Data = rest
		} else if g, next, ok := nextBlock(st.Cont); ok {
			body = QuoteOf(g.Terms)
			st.Cont = next
		} else if top == nil {
			return st, underflow(op, 1)
		} else {
			return st, wrongType(op, "quote", top)
		}
	}

	targets, err := vm.defineTargets(ctx, t, selector, explicit, st.Selection)
	if err != nil {
		return st, err
	}

	fn := Closure(body.Terms)
	if len(targets) == 0 {
		st.Dict.Define(t.Name, fn)
	}
	for _, obj := range targets {
		obj.objectCore().Define(t.Name, fn)
	}
	return st, nil
}

func (vm *VM) defineTargets(ctx context.Context, t Define, selector Text, explicit bool, sel Selection) ([]Object, error) {
	op := t.String()
	var targets []Object
	switch {
	case explicit && t.Scoped:
		if vm.doc == nil {
			return nil, structural(op, "no document to query %q in", selector)
		}
		for _, obj := range sel {
			found, err := vm.doc.Query(ctx, obj, string(selector))
			if err != nil {
				return nil, errors.Wrapf(err, "%v query %q", op, selector)
			}
			targets = append(targets, found...)
		}
	case explicit:
		if vm.doc == nil {
			return nil, structural(op, "no document to query %q in", selector)
		}
		found, err := vm.doc.Query(ctx, nil, string(selector))
		if err != nil {
			return nil, errors.Wrapf(err, "%v query %q", op, selector)
		}
		targets = found
	case t.Scoped:
		targets = sel
	default:
		return nil, nil
	}
	if len(targets) == 0 {
		if explicit {
			return nil, structural(op, "selector %q matched no objects", selector)
		}
		return nil, structural(op, "nothing selected")
	}
	return targets, nil
}

func isQuote(v Value) bool {
	_, ok := v.(Quote)
	return ok
}

// nextBlock takes a call or quote block that directly follows the current
// term, returning the continuation advanced past it.
func nextBlock(cont *Cont) (Group, *Cont, bool) {
	frame, rest, ok := cont.Pop()
	if !ok || frame.Native != nil || frame.Program.Done() {
		return Group{}, cont, false
	}
	term, next := frame.Program.Next()
	g, isGroup := term.(Group)
	if !isGroup || g.Kind == ArrayBlock {
		return Group{}, cont, false
	}
	return g, rest.Push(ProgramFrame(next)), true
}

// fieldGet pushes the named field of the first selected object that has one,
// doing nothing if none does.
func fieldGet(name string, st State) State {
	for _, obj := range st.Selection {
		if v, ok := obj.objectCore().Field(name); ok {
			return st.Push(v)
		}
	}
	return st
}

func fieldSet(name string, st State) (State, error) {
	v, rest, ok := st.Data.Pop()
	if !ok {
		return st, underflow(".="+name, 1)
	}
	for _, obj := range st.Selection {
		obj.objectCore().SetField(name, v)
	}
	st.Data = rest
	return st, nil
}
