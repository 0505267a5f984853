package pjs

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjslang/pjs/internal/logio"
)

type evalTestCases []evalTestCase

func (ets evalTestCases) run(t *testing.T) {
	{
		var exclusive []evalTestCase
		for _, et := range ets {
			if et.exclusive {
				exclusive = append(exclusive, et)
			}
		}
		if len(exclusive) > 0 {
			ets = exclusive
		}
	}
	for _, et := range ets {
		t.Run(et.name, et.run)
	}
}

func evalTest(name string) (et evalTestCase) {
	et.name = name
	return et
}

type evalTestCase struct {
	name    string
	src     string
	data    []Value
	opts    []VMOption
	vocabs  []Vocabulary
	useDoc  bool
	sel     func(doc *testDoc) Selection
	timeout time.Duration

	checks  []func(t *testing.T, res evalResult)
	wantErr func(t *testing.T, err error)

	exclusive bool
}

type evalResult struct {
	vm   *VM
	doc  *testDoc
	dict *Dictionary
	data *Stack
	out  string
}

func (et evalTestCase) exclusiveTest() evalTestCase {
	et.exclusive = true
	return et
}

func (et evalTestCase) withData(values ...Value) evalTestCase {
	et.data = append(et.data, values...)
	return et
}

func (et evalTestCase) withOptions(opts ...VMOption) evalTestCase {
	et.opts = append(et.opts, opts...)
	return et
}

func (et evalTestCase) withWords(vocabs ...Vocabulary) evalTestCase {
	et.vocabs = append(et.vocabs, vocabs...)
	return et
}

func (et evalTestCase) withTimeout(timeout time.Duration) evalTestCase {
	et.timeout = timeout
	return et
}

// withDocument runs against a fresh testDoc, with nothing selected.
func (et evalTestCase) withDocument() evalTestCase {
	et.useDoc = true
	return et
}

// withSelection runs against a fresh testDoc, selecting what sel returns.
func (et evalTestCase) withSelection(sel func(doc *testDoc) Selection) evalTestCase {
	et.useDoc = true
	et.sel = sel
	return et
}

func (et evalTestCase) withRootSelected() evalTestCase {
	return et.withSelection(func(doc *testDoc) Selection { return Selection{doc.root} })
}

func (et evalTestCase) eval(src string) evalTestCase {
	et.src = src
	return et
}

func (et evalTestCase) expectData(values ...Value) evalTestCase {
	et.checks = append(et.checks, func(t *testing.T, res evalResult) {
		if values == nil {
			values = []Value{}
		}
		assert.Equal(t, values, res.data.Slice(), "expected data stack")
	})
	return et
}

func (et evalTestCase) expectOutput(output string) evalTestCase {
	et.checks = append(et.checks, func(t *testing.T, res evalResult) {
		assert.Equal(t, output, res.out, "expected output")
	})
	return et
}

func (et evalTestCase) expectDoc(tree string) evalTestCase {
	et.checks = append(et.checks, func(t *testing.T, res evalResult) {
		assert.Equal(t, tree, res.doc.root.render(), "expected document tree")
	})
	return et
}

func (et evalTestCase) expect(check func(t *testing.T, res evalResult)) evalTestCase {
	et.checks = append(et.checks, check)
	return et
}

// expectError requires an error of target's type anywhere in the chain.
func (et evalTestCase) expectError(target interface{}) evalTestCase {
	et.wantErr = func(t *testing.T, err error) {
		require.Error(t, err, "expected an error")
		assert.True(t, errors.As(err, target), "expected a %T error, got: %+v", target, err)
	}
	return et
}

func (et evalTestCase) expectErrorIs(want error) evalTestCase {
	et.wantErr = func(t *testing.T, err error) {
		assert.True(t, errors.Is(err, want), "expected error: %v\ngot: %+v", want, err)
	}
	return et
}

func (et evalTestCase) run(t *testing.T) {
	timeout := et.timeout
	if timeout == 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var out strings.Builder
	opts := []VMOption{
		WithOutput(&out),
		WithTee(&logio.Writer{Logf: func(mess string, args ...interface{}) {
			t.Logf("out: "+mess, args...)
		}}),
		WithLogf(t.Logf),
	}
	res := evalResult{}
	var sel Selection
	if et.useDoc {
		res.doc = newTestDoc()
		opts = append(opts, WithDocument(res.doc))
		if et.sel != nil {
			sel = et.sel(res.doc)
		}
	}
	res.vm = New(append(opts, et.opts...)...)
	res.dict = NewDictionary(append([]Vocabulary{Core}, et.vocabs...)...)
	stop := context.AfterFunc(ctx, res.vm.CancelTasks)
	defer stop()

	data, err := res.vm.Eval(ctx, sel, et.src, ListOf(et.data...), res.dict)
	if werr := res.vm.Wait(); err == nil && et.wantErr == nil {
		assert.NoError(t, werr, "unexpected task failure")
	}
	res.data = data
	res.out = out.String()

	if et.wantErr != nil {
		et.wantErr(t, err)
	} else if !assert.NoError(t, err, "unexpected eval error") {
		return
	}
	for _, check := range et.checks {
		check(t, res)
	}
}

// testDoc is a minimal Document: objects are named nodes, and selectors are
// either "*" or an object name.
type testDoc struct {
	mu   sync.Mutex
	root *testObj
}

type testObj struct {
	ObjectCore

	doc      *testDoc
	name     string
	attached *testObj
	children []Value
}

func newTestDoc() *testDoc {
	doc := &testDoc{}
	doc.root = &testObj{doc: doc, name: "root"}
	return doc
}

func (doc *testDoc) Root() Object { return doc.root }

func (doc *testDoc) Create(name string) (Object, error) {
	return &testObj{doc: doc, name: strings.ToLower(name)}, nil
}

func (doc *testDoc) Query(ctx context.Context, within Object, selector string) ([]Object, error) {
	scope := doc.root
	if within != nil {
		scope = within.(*testObj)
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	var found []Object
	scope.walk(func(obj *testObj) {
		if obj != scope && (selector == "*" || obj.name == selector) {
			found = append(found, obj)
		}
	})
	return found, nil
}

// add attaches a new named child, for building fixtures.
func (doc *testDoc) add(parent *testObj, name string) *testObj {
	obj := &testObj{doc: doc, name: name}
	if err := parent.Append(obj); err != nil {
		panic(err)
	}
	return obj
}

func (obj *testObj) Name() string { return obj.name }

func (obj *testObj) Append(child Value) error { return obj.insert(child, false) }

func (obj *testObj) Prepend(child Value) error { return obj.insert(child, true) }

func (obj *testObj) insert(child Value, first bool) error {
	obj.doc.mu.Lock()
	defer obj.doc.mu.Unlock()
	if c, ok := child.(*testObj); ok {
		if prior := c.attached; prior != nil {
			for i, v := range prior.children {
				if v == Value(c) {
					prior.children = append(prior.children[:i:i], prior.children[i+1:]...)
					break
				}
			}
		}
		c.attached = obj
	}
	if first {
		obj.children = append([]Value{child}, obj.children...)
	} else {
		obj.children = append(obj.children, child)
	}
	return nil
}

func (obj *testObj) walk(f func(*testObj)) {
	f(obj)
	for _, child := range obj.children {
		if c, ok := child.(*testObj); ok {
			c.walk(f)
		}
	}
}

// render prints the tree like "root(p(hello) br)".
func (obj *testObj) render() string {
	obj.doc.mu.Lock()
	defer obj.doc.mu.Unlock()
	var sb strings.Builder
	obj.renderInto(&sb)
	return sb.String()
}

func (obj *testObj) renderInto(sb *strings.Builder) {
	sb.WriteString(obj.name)
	if len(obj.children) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, child := range obj.children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if c, ok := child.(*testObj); ok {
			c.renderInto(sb)
		} else {
			sb.WriteString(Display(child))
		}
	}
	sb.WriteByte(')')
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
