package pjs

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/michaelmacinnis/adapted"
	"github.com/pkg/errors"
)

// StandardWords installs stack shuffling, arithmetic, comparison, record and
// output words.
func StandardWords(dict *Dictionary) {
	dict.Define("dup", dup)
	dict.Define("drop", drop)
	dict.Define("swap", swap)
	dict.Define("rot", rot)
	dict.Define("rotn", rotn)

	dict.Define("+", plus)
	dict.Define("-", binaryNumber("-", func(a, b float64) float64 { return a - b }))
	dict.Define("*", binaryNumber("*", func(a, b float64) float64 { return a * b }))
	dict.Define("/", binaryNumber("/", func(a, b float64) float64 { return a / b }))
	dict.Define("pow", binaryNumber("pow", math.Pow))
	dict.Define("incr", unaryNumber("incr", func(a float64) float64 { return a + 1 }))
	dict.Define("decr", unaryNumber("decr", func(a float64) float64 { return a - 1 }))
	dict.Define("neg", unaryNumber("neg", func(a float64) float64 { return -a }))
	for name, f := range unaryMath {
		dict.Define(name, unaryNumber(name, f))
	}

	dict.Define("<", compare("<", func(c int) bool { return c < 0 }))
	dict.Define("<=", compare("<=", func(c int) bool { return c <= 0 }))
	dict.Define(">", compare(">", func(c int) bool { return c > 0 }))
	dict.Define(">=", compare(">=", func(c int) bool { return c >= 0 }))
	dict.Define("=", equal)
	dict.Define("not", not)
	dict.Define("#t", pushValue(Bool(true)))
	dict.Define("#f", pushValue(Bool(false)))

	dict.Define("its", its)
	dict.Define("object", object)
	dict.Define("get", get)
	dict.Define("get1", get1)
	dict.Define("set", set)
	dict.Define("put", put)
	dict.Define("s", join)
	dict.Define("unescape", unescape)
	dict.Define("matches", matches)

	dict.Define("log", logValue)
	dict.Define("dump", dump)
	dict.Define(".", commit)
}

// Core is the vocabulary every host starts from.
func Core(dict *Dictionary) {
	ControlWords(dict)
	StandardWords(dict)
}

var unaryMath = map[string]func(float64) float64{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"asinh": math.Asinh, "acosh": math.Acosh, "atanh": math.Atanh,
	"exp": math.Exp, "ln": math.Log, "log10": math.Log10, "log2": math.Log2,
	"floor": math.Floor, "ceil": math.Ceil, "abs": math.Abs, "trunc": math.Trunc,
	"sqrt":  math.Sqrt,
	"round": func(a float64) float64 { return math.Floor(a + 0.5) },
	"sign": func(a float64) float64 {
		switch {
		case a > 0:
			return 1
		case a < 0:
			return -1
		}
		return a
	},
}

// popN pops n values, returning them bottom first.
func popN(op string, data *Stack, n int) ([]Value, *Stack, error) {
	if data.Len() < n {
		return nil, data, underflow(op, n)
	}
	vs := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		vs[i], data, _ = data.Pop()
	}
	return vs, data, nil
}

func pushValue(v Value) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		return st.Push(v), nil
	}
}

func dup(ctx context.Context, vm *VM, st State) (State, error) {
	v, ok := st.Data.Peek()
	if !ok {
		return st, underflow("dup", 1)
	}
	return st.Push(v), nil
}

func drop(ctx context.Context, vm *VM, st State) (State, error) {
	if st.Data == nil {
		return st, underflow("drop", 1)
	}
	st.Data = st.Data.Tail()
	return st, nil
}

func swap(ctx context.Context, vm *VM, st State) (State, error) {
	return rotate("swap", st, 1)
}

// rot takes v1 v2 v3 to v2 v3 v1.
func rot(ctx context.Context, vm *VM, st State) (State, error) {
	return rotate("rot", st, 2)
}

// rotn brings the value n places below the top up to the top.
func rotn(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("rotn", 1)
	}
	n, isNumber := v.(Number)
	if !isNumber || float64(n) != math.Trunc(float64(n)) {
		return st, wrongType("rotn", "whole number", v)
	}
	if n < 0 {
		return st, structural("rotn", "rotation cannot be negative, got %v", n)
	}
	st.Data = data
	return rotate("rotn", st, int(n))
}

func rotate(op string, st State, n int) (State, error) {
	if n == 0 {
		return st, nil
	}
	vs, data, err := popN(op, st.Data, n+1)
	if err != nil {
		return st, err
	}
	for _, v := range vs[1:] {
		data = data.Push(v)
	}
	st.Data = data.Push(vs[0])
	return st, nil
}

func numbers(op string, vs []Value) ([]float64, error) {
	fs := make([]float64, len(vs))
	for i, v := range vs {
		n, ok := v.(Number)
		if !ok {
			return nil, wrongType(op, "number", v)
		}
		fs[i] = float64(n)
	}
	return fs, nil
}

func binaryNumber(op string, f func(a, b float64) float64) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		vs, data, err := popN(op, st.Data, 2)
		if err != nil {
			return st, err
		}
		fs, err := numbers(op, vs)
		if err != nil {
			return st, err
		}
		st.Data = data.Push(Number(f(fs[0], fs[1])))
		return st, nil
	}
}

func unaryNumber(op string, f func(a float64) float64) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		vs, data, err := popN(op, st.Data, 1)
		if err != nil {
			return st, err
		}
		fs, err := numbers(op, vs)
		if err != nil {
			return st, err
		}
		st.Data = data.Push(Number(f(fs[0])))
		return st, nil
	}
}

// plus adds numbers, and concatenates when either side is text.
func plus(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("+", st.Data, 2)
	if err != nil {
		return st, err
	}
	_, aText := vs[0].(Text)
	_, bText := vs[1].(Text)
	if aText || bText {
		st.Data = data.Push(Text(Display(vs[0]) + Display(vs[1])))
		return st, nil
	}
	fs, err := numbers("+", vs)
	if err != nil {
		return st, err
	}
	st.Data = data.Push(Number(fs[0] + fs[1]))
	return st, nil
}

func compare(op string, test func(c int) bool) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		vs, data, err := popN(op, st.Data, 2)
		if err != nil {
			return st, err
		}
		var c int
		switch a := vs[0].(type) {
		case Number:
			b, ok := vs[1].(Number)
			if !ok {
				return st, wrongType(op, "number", vs[1])
			}
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			case a != b:
				// NaN compares false every way
				st.Data = data.Push(Bool(false))
				return st, nil
			}
		case Text:
			b, ok := vs[1].(Text)
			if !ok {
				return st, wrongType(op, "text", vs[1])
			}
			c = strings.Compare(string(a), string(b))
		default:
			return st, wrongType(op, "number or text", vs[0])
		}
		st.Data = data.Push(Bool(test(c)))
		return st, nil
	}
}

func equal(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("=", st.Data, 2)
	if err != nil {
		return st, err
	}
	st.Data = data.Push(Bool(Equal(vs[0], vs[1])))
	return st, nil
}

func not(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("not", 1)
	}
	st.Data = data.Push(Bool(!Truthy(v)))
	return st, nil
}

// its pushes the first selected object.
func its(ctx context.Context, vm *VM, st State) (State, error) {
	if len(st.Selection) == 0 {
		return st, structural("its", "nothing selected")
	}
	return st.Push(st.Selection[0]), nil
}

func object(ctx context.Context, vm *VM, st State) (State, error) {
	return st.Push(Record{}), nil
}

// getProp follows a dotted property path through records, arrays and object
// fields.
func getProp(op string, v Value, path string) (Value, error) {
	for _, part := range strings.Split(path, ".") {
		next, ok := property(v, part)
		if !ok {
			return nil, &StackShapeError{op, fmt.Sprintf("property %q not found in %v", path, TypeName(v))}
		}
		v = next
	}
	return v, nil
}

func property(v Value, name string) (Value, bool) {
	switch v := v.(type) {
	case Record:
		item, ok := v[name]
		return item, ok
	case Array:
		if name == "length" {
			return Number(len(v)), true
		}
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	case Object:
		return v.objectCore().Field(name)
	}
	return nil, false
}

func setProp(op string, v Value, path string, val Value) error {
	parts := strings.Split(path, ".")
	if len(parts) > 1 {
		parent, err := getProp(op, v, strings.Join(parts[:len(parts)-1], "."))
		if err != nil {
			return err
		}
		v = parent
	}
	name := parts[len(parts)-1]
	switch target := v.(type) {
	case Record:
		target[name] = val
	case Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(target) {
			return &StackShapeError{op, fmt.Sprintf("index %q out of range", name)}
		}
		target[i] = val
	case Object:
		target.objectCore().SetField(name, val)
	default:
		return wrongType(op, "record, array or object", v)
	}
	return nil
}

func textArg(op string, v Value) (string, error) {
	s, ok := v.(Text)
	if !ok {
		return "", wrongType(op, "text", v)
	}
	return string(s), nil
}

// get: obj name -> val obj
func get(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("get", st.Data, 2)
	if err != nil {
		return st, err
	}
	name, err := textArg("get", vs[1])
	if err != nil {
		return st, err
	}
	val, err := getProp("get", vs[0], name)
	if err != nil {
		return st, err
	}
	st.Data = data.Push(val).Push(vs[0])
	return st, nil
}

// get1: obj name -> val
func get1(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("get1", st.Data, 2)
	if err != nil {
		return st, err
	}
	name, err := textArg("get1", vs[1])
	if err != nil {
		return st, err
	}
	val, err := getProp("get1", vs[0], name)
	if err != nil {
		return st, err
	}
	st.Data = data.Push(val)
	return st, nil
}

// set: obj val name -> obj
func set(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("set", st.Data, 3)
	if err != nil {
		return st, err
	}
	name, err := textArg("set", vs[2])
	if err != nil {
		return st, err
	}
	if err := setProp("set", vs[0], name, vs[1]); err != nil {
		return st, err
	}
	st.Data = data.Push(vs[0])
	return st, nil
}

// put: val obj name -> obj
func put(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("put", st.Data, 3)
	if err != nil {
		return st, err
	}
	name, err := textArg("put", vs[2])
	if err != nil {
		return st, err
	}
	if err := setProp("put", vs[1], name, vs[0]); err != nil {
		return st, err
	}
	st.Data = data.Push(vs[1])
	return st, nil
}

// join concatenates an array into text, with an optional separator on top.
func join(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("s", 1)
	}
	sep := ""
	if s, isText := v.(Text); isText {
		sep = string(s)
		if v, data, ok = data.Pop(); !ok {
			return st, underflow("s", 2)
		}
	}
	arr, isArray := v.(Array)
	if !isArray {
		return st, wrongType("s", "array", v)
	}
	parts := make([]string, len(arr))
	for i, item := range arr {
		parts[i] = Display(item)
	}
	st.Data = data.Push(Text(strings.Join(parts, sep)))
	return st, nil
}

// unescape decodes backslash escapes in text.
func unescape(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("unescape", 1)
	}
	s, err := textArg("unescape", v)
	if err != nil {
		return st, err
	}
	actual, err := adapted.ActualBytes(s)
	if err != nil {
		return st, errors.Wrap(err, "unescape")
	}
	st.Data = data.Push(Text(actual))
	return st, nil
}

// matches: text pattern -> bool, using shell glob patterns.
func matches(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("matches", st.Data, 2)
	if err != nil {
		return st, err
	}
	name, err := textArg("matches", vs[0])
	if err != nil {
		return st, err
	}
	pattern, err := textArg("matches", vs[1])
	if err != nil {
		return st, err
	}
	ok, err := adapted.Match(pattern, name)
	if err != nil {
		return st, errors.Wrapf(err, "matches %q", pattern)
	}
	st.Data = data.Push(Bool(ok))
	return st, nil
}

// logValue writes the top value without consuming it.
func logValue(ctx context.Context, vm *VM, st State) (State, error) {
	v, ok := st.Data.Peek()
	if !ok {
		return st, underflow("log", 1)
	}
	if _, err := fmt.Fprintln(vm, Display(v)); err != nil {
		return st, err
	}
	return st, nil
}

func dump(ctx context.Context, vm *VM, st State) (State, error) {
	if err := Dump(vm, st); err != nil {
		return st, err
	}
	return st, nil
}

// commit attaches the top value as the last child of the first selected
// object, or of the document root when nothing is selected.
func commit(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow(".", 1)
	}
	var parent Object
	if len(st.Selection) > 0 {
		parent = st.Selection[0]
	} else if vm.doc != nil {
		parent = vm.doc.Root()
	}
	if parent == nil {
		return st, structural(".", "nowhere to commit to")
	}
	if obj, isObj := v.(Object); isObj {
		if obj.objectCore().IsOpen() {
			return st, structural(".", "<%v> is still being built", obj.Name())
		}
	} else {
		v = Text(Display(v))
	}
	if err := parent.Append(v); err != nil {
		return st, err
	}
	st.Data = data
	return st, nil
}
