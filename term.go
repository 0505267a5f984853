package pjs

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is one element of a parsed program. The concrete term types are Word,
// NumberLit, StringLit, TagOpen, TagClose, TagSelfClosed, Group and the sigil
// forms Define, FieldGet, FieldSet, AttrGet, AttrSet and OnEvent.
type Term interface {
	fmt.Stringer
	term()
}

// Word names a dictionary entry.
type Word struct{ Name string }

// NumberLit pushes a number.
type NumberLit struct {
	Value float64
	Src   string
}

// StringLit pushes the verbatim text of a brace block.
type StringLit struct{ Text string }

// TagOpen creates an open object and selects it.
type TagOpen struct{ Name string }

// TagClose gathers values into the nearest open object of the same name.
type TagClose struct{ Name string }

// TagSelfClosed creates an already closed object.
type TagSelfClosed struct{ Name string }

// GroupKind distinguishes the bracketed term groups.
type GroupKind uint8

const (
	CallBlock  GroupKind = iota // ( ... ) runs in place
	QuoteBlock                  // (: ... ) pushes itself as a value
	ArrayBlock                  // [ ... ] collects what its body produces
)

// Group is a bracketed sequence of terms.
type Group struct {
	Kind  GroupKind
	Terms []Term
}

// Define installs the next quote block as a word; Scoped definitions (":.name")
// install into objects rather than the global dictionary.
type Define struct {
	Name   string
	Scoped bool
}

// FieldGet reads a field of the selection (".name").
type FieldGet struct{ Name string }

// FieldSet writes a field on every selected object (".=name").
type FieldSet struct{ Name string }

// AttrGet is the "@name" host attribute form.
type AttrGet struct{ Name string }

// AttrSet is the "@=name" host attribute form.
type AttrSet struct{ Name string }

// OnEvent is the "~on<event>" host handler registration form.
type OnEvent struct{ Event string }

func (Word) term()          {}
func (NumberLit) term()     {}
func (StringLit) term()     {}
func (TagOpen) term()       {}
func (TagClose) term()      {}
func (TagSelfClosed) term() {}
func (Group) term()         {}
func (Define) term()        {}
func (FieldGet) term()      {}
func (FieldSet) term()      {}
func (AttrGet) term()       {}
func (AttrSet) term()       {}
func (OnEvent) term()       {}

func (t Word) String() string { return t.Name }
func (t NumberLit) String() string {
	if t.Src != "" {
		return t.Src
	}
	return strconv.FormatFloat(t.Value, 'f', -1, 64)
}
func (t StringLit) String() string     { return "{" + t.Text + "}" }
func (t TagOpen) String() string       { return "<" + t.Name + ">" }
func (t TagClose) String() string      { return "</" + t.Name + ">" }
func (t TagSelfClosed) String() string { return "<" + t.Name + "/>" }
func (t Define) String() string {
	if t.Scoped {
		return ":." + t.Name
	}
	return ":" + t.Name
}
func (t FieldGet) String() string { return "." + t.Name }
func (t FieldSet) String() string { return ".=" + t.Name }
func (t AttrGet) String() string  { return "@" + t.Name }
func (t AttrSet) String() string  { return "@=" + t.Name }
func (t OnEvent) String() string  { return "~on" + t.Event }

func (g Group) String() string {
	var sb strings.Builder
	switch g.Kind {
	case QuoteBlock:
		sb.WriteString("(:")
	case ArrayBlock:
		sb.WriteString("[")
	default:
		sb.WriteString("(")
	}
	writeTerms(&sb, g.Terms)
	if g.Kind == ArrayBlock {
		sb.WriteString("]")
	} else {
		sb.WriteString(")")
	}
	return sb.String()
}

func writeTerms(sb *strings.Builder, terms []Term) {
	for i, t := range terms {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
}

// wordTerm resolves the sigil forms of a word. Sigils are checked in the
// order ":", "@", "." and "~on"; a lone sigil is left as a plain word so that
// hosts may bind it.
func wordTerm(text string) Term {
	switch {
	case strings.HasPrefix(text, ":.") && len(text) > 2:
		return Define{Name: text[2:], Scoped: true}
	case strings.HasPrefix(text, ":") && len(text) > 1:
		return Define{Name: text[1:]}
	case strings.HasPrefix(text, "@=") && len(text) > 2:
		return AttrSet{Name: text[2:]}
	case strings.HasPrefix(text, "@") && len(text) > 1 && text != "@=":
		return AttrGet{Name: text[1:]}
	case strings.HasPrefix(text, ".=") && len(text) > 2:
		return FieldSet{Name: text[2:]}
	case strings.HasPrefix(text, ".") && len(text) > 1 && text != ".=":
		return FieldGet{Name: text[1:]}
	case strings.HasPrefix(text, "~on") && len(text) > 3:
		return OnEvent{Event: text[3:]}
	}
	return Word{Name: text}
}
