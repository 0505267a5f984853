package pjs

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/michaelmacinnis/adapted"
)

// Value is anything that may live on the data stack: Number, Text, Bool,
// Array, Record, Quote, Func or an Object.
type Value interface{ isValue() }

// Number is the only numeric type.
type Number float64

// Text is a string value.
type Text string

// Bool is a truth value.
type Bool bool

// Array is an ordered sequence of values.
type Array []Value

// Record is a keyed property bag; records are shared by reference.
type Record map[string]Value

// Quote is an inert block of terms.
type Quote struct{ Terms []Term }

// Func is a native function value, run by "!" like a quote.
type Func Handler

func (Number) isValue() {}
func (Text) isValue()   {}
func (Bool) isValue()   {}
func (Array) isValue()  {}
func (Record) isValue() {}
func (Quote) isValue()  {}
func (Func) isValue()   {}

// QuoteOf wraps a parsed term sequence as a quote value.
func QuoteOf(terms []Term) Quote { return Quote{Terms: terms} }

// TypeName names the kind of v for error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case Number:
		return "number"
	case Text:
		return "text"
	case Bool:
		return "boolean"
	case Array:
		return "array"
	case Record:
		return "record"
	case Quote:
		return "quote"
	case Func:
		return "function"
	case Object:
		return "object"
	}
	return reflect.TypeOf(v).String()
}

// Display converts v to the text used when a value is attached to an object or
// written by "log".
func Display(v Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case Number:
		return formatNumber(float64(v))
	case Text:
		return string(v)
	case Bool:
		return strconv.FormatBool(bool(v))
	case Array:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Display(item)
		}
		return strings.Join(parts, ",")
	case Record:
		return formatRecord(v, Display)
	case Quote:
		return Group{Kind: QuoteBlock, Terms: v.Terms}.String()
	case Func:
		return "<native>"
	case Object:
		return "<" + v.Name() + ">"
	}
	return ""
}

// Literal formats v the way the REPL echoes it back: text is braced, arrays
// are bracketed. Text that could not be read back from braces is shown
// escaped and dollar quoted instead.
func Literal(v Value) string {
	switch v := v.(type) {
	case Text:
		if bracePrintable(string(v)) {
			return "{" + string(v) + "}"
		}
		return adapted.CanonicalString(string(v))
	case Array:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Literal(item)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case Record:
		return formatRecord(v, Literal)
	}
	return Display(v)
}

func bracePrintable(s string) bool {
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth--; depth < 0 {
				return false
			}
		case !unicode.IsPrint(r):
			return false
		}
	}
	return depth == 0
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatRecord(rec Record, format func(Value) string) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(format(rec[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

// Truthy reports whether v counts as true for conditional words.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case Bool:
		return bool(v)
	case Number:
		return v != 0 && !math.IsNaN(float64(v))
	case Text:
		return v != ""
	}
	return true
}

// Equal compares scalars by value and everything else by identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case Text:
		bt, ok := b.(Text)
		return ok && a == bt
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Array:
		ba, ok := b.(Array)
		return ok && len(a) == len(ba) && (len(a) == 0 || &a[0] == &ba[0])
	case Quote:
		bq, ok := b.(Quote)
		return ok && len(a.Terms) == len(bq.Terms) && (len(a.Terms) == 0 || &a.Terms[0] == &bq.Terms[0])
	case Record, Func:
		if reflect.TypeOf(a) != reflect.TypeOf(b) {
			return false
		}
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case Object:
		bo, ok := b.(Object)
		return ok && a == bo
	}
	return false
}
