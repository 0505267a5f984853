package dom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pjslang/pjs"
)

// FrameInterval is how long "frame" waits: one frame at 60Hz.
var FrameInterval = time.Second / 60

// Words installs the document vocabulary: attribute access, event listeners,
// selection words, text, markup and style, and timed waits.
func Words(dict *pjs.Dictionary) {
	dict.Define("@", getAttr)
	dict.Define("@=", setAttr)
	dict.Define("~on", on)
	dict.Define("sel", sel)
	dict.Define("parent", parent)
	dict.Define("text", text)
	dict.Define("<=>", setInner)
	dict.Define("style", style)
	dict.Define("wait", wait)
	dict.Define("frame", frame)
}

func shapeError(op, format string, args ...interface{}) error {
	return &pjs.StackShapeError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func structuralError(op, format string, args ...interface{}) error {
	return &pjs.StructuralError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func pop(op string, st *pjs.State) (pjs.Value, error) {
	v, rest, ok := st.Data.Pop()
	if !ok {
		return nil, shapeError(op, "stack underflow")
	}
	st.Data = rest
	return v, nil
}

func popText(op string, st *pjs.State) (string, error) {
	v, err := pop(op, st)
	if err != nil {
		return "", err
	}
	s, ok := v.(pjs.Text)
	if !ok {
		return "", shapeError(op, "expected text, got %v", pjs.TypeName(v))
	}
	return string(s), nil
}

func elements(op string, sel pjs.Selection) ([]*Element, error) {
	els := make([]*Element, 0, len(sel))
	for _, obj := range sel {
		el, ok := obj.(*Element)
		if !ok {
			return nil, structuralError(op, "%v is not a document element", pjs.Display(obj))
		}
		els = append(els, el)
	}
	return els, nil
}

// getAttr: name -> value, reading the first selected element. A missing
// attribute reads as empty text.
func getAttr(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	name, err := popText("@", &st)
	if err != nil {
		return st, err
	}
	els, err := elements("@"+name, st.Selection)
	if err != nil {
		return st, err
	}
	if len(els) == 0 {
		return st, structuralError("@"+name, "no element selected")
	}
	val, _ := els[0].Attr(name)
	return st.Push(pjs.Text(val)), nil
}

// setAttr: value name -> , writing every selected element.
func setAttr(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	name, err := popText("@=", &st)
	if err != nil {
		return st, err
	}
	v, err := pop("@="+name, &st)
	if err != nil {
		return st, err
	}
	els, err := elements("@="+name, st.Selection)
	if err != nil {
		return st, err
	}
	for _, el := range els {
		el.SetAttr(name, pjs.Display(v))
	}
	return st, nil
}

// on: quote [selector] event -> , registering the quote as a listener on the
// selection, or on the elements matching selector. The listener runs with its
// element selected, the event record pushed over the stack as it was at
// registration.
func on(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	event, err := popText("~on", &st)
	if err != nil {
		return st, err
	}
	op := "~on" + event
	v, err := pop(op, &st)
	if err != nil {
		return st, err
	}
	targets := st.Selection
	if selector, isText := v.(pjs.Text); isText {
		if targets, err = query(ctx, vm, op, nil, string(selector)); err != nil {
			return st, err
		}
		if v, err = pop(op, &st); err != nil {
			return st, err
		}
	}
	body, isQuote := v.(pjs.Quote)
	if !isQuote {
		return st, shapeError(op, "expected quote, got %v", pjs.TypeName(v))
	}
	els, err := elements(op, targets)
	if err != nil {
		return st, err
	}
	if len(els) == 0 {
		return st, structuralError(op, "nothing to listen on")
	}

	data, dict := st.Data, st.Dict
	for _, el := range els {
		el := el
		el.On(event, func(ctx context.Context, ev pjs.Record) error {
			_, err := vm.Run(ctx, pjs.Selection{el}, pjs.NewProgram(body.Terms), data.Push(ev), dict)
			return err
		})
	}
	return st, nil
}

func query(ctx context.Context, vm *pjs.VM, op string, within pjs.Object, selector string) (pjs.Selection, error) {
	doc := vm.Document()
	if doc == nil {
		return nil, structuralError(op, "no document to query %q in", selector)
	}
	found, err := doc.Query(ctx, within, selector)
	if err != nil {
		return nil, err
	}
	return pjs.Selection(found), nil
}

// sel: selector -> , selecting the matches within the first selected object,
// or the whole document, until the end of the current block.
func sel(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	selector, err := popText("sel", &st)
	if err != nil {
		return st, err
	}
	var within pjs.Object
	if len(st.Selection) > 0 {
		within = st.Selection[0]
	}
	found, err := query(ctx, vm, "sel", within, selector)
	if err != nil {
		return st, err
	}

	prior := st.Selection
	frame, rest, ok := st.Cont.Pop()
	if !ok {
		return st, structuralError("sel", "not inside a block")
	}
	st.Cont = rest.
		Push(pjs.NativeFrame("sel", func(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
			st.Selection = prior
			return st, nil
		})).
		Push(frame)
	st.Selection = found
	return st, nil
}

// parent replaces the selection with the parents of the selected elements.
func parent(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	els, err := elements("parent", st.Selection)
	if err != nil {
		return st, err
	}
	parents := make(pjs.Selection, 0, len(els))
	for _, el := range els {
		if p := el.ParentElement(); p != nil {
			parents = append(parents, p)
		}
	}
	st.Selection = parents
	return st, nil
}

// text pushes the text content of the selection, one paragraph per element.
func text(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	els, err := elements("text", st.Selection)
	if err != nil {
		return st, err
	}
	parts := make([]string, len(els))
	for i, el := range els {
		parts[i] = el.Text()
	}
	return st.Push(pjs.Text(strings.Join(parts, "\n\n"))), nil
}

// setInner: markup -> , replacing the content of every selected element.
func setInner(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	markup, err := popText("<=>", &st)
	if err != nil {
		return st, err
	}
	els, err := elements("<=>", st.Selection)
	if err != nil {
		return st, err
	}
	for _, el := range els {
		if err := el.SetInnerHTML(markup); err != nil {
			return st, err
		}
	}
	return st, nil
}

// style takes either "k: v; k2: v2" text or a flat [k v k2 v2] array.
func style(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	v, err := pop("style", &st)
	if err != nil {
		return st, err
	}
	var props [][2]string
	switch spec := v.(type) {
	case pjs.Text:
		props = parseStyle(string(spec))
	case pjs.Array:
		if len(spec)%2 != 0 {
			return st, shapeError("style", "expected key value pairs, got %v items", len(spec))
		}
		for i := 0; i < len(spec); i += 2 {
			props = append(props, [2]string{pjs.Display(spec[i]), pjs.Display(spec[i+1])})
		}
	default:
		return st, shapeError("style", "expected text or array, got %v", pjs.TypeName(v))
	}
	els, err := elements("style", st.Selection)
	if err != nil {
		return st, err
	}
	for _, el := range els {
		el.SetStyle(props...)
	}
	return st, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait: ms -> , blocking the run, but not the VM, for ms milliseconds.
func wait(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	v, err := pop("wait", &st)
	if err != nil {
		return st, err
	}
	ms, ok := v.(pjs.Number)
	if !ok {
		return st, shapeError("wait", "expected number, got %v", pjs.TypeName(v))
	}
	d := time.Duration(float64(ms)+0.5) * time.Millisecond
	return st, sleep(ctx, d)
}

func frame(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	return st, sleep(ctx, FrameInterval)
}
