package pjs

import (
	"fmt"
	"strings"
)

// Program is a view over a term sequence: the terms in [I, End) remain to be
// run. Views are values; advancing yields a new view.
type Program struct {
	Terms []Term
	I     int
	End   int
}

// NewProgram views all of terms.
func NewProgram(terms []Term) Program { return Program{Terms: terms, End: len(terms)} }

// Done reports whether the cursor has reached the end of the view.
func (p Program) Done() bool { return p.I >= p.End }

// Next returns the term under the cursor and the view advanced past it.
func (p Program) Next() (Term, Program) {
	t := p.Terms[p.I]
	p.I++
	return t, p
}

// Restart views the whole underlying term sequence again.
func (p Program) Restart() Program { return NewProgram(p.Terms) }

// Slice narrows the view to [i, end).
func (p Program) Slice(i, end int) Program { return Program{Terms: p.Terms, I: i, End: end} }

// Remaining returns the terms still to run.
func (p Program) Remaining() []Term { return p.Terms[p.I:p.End] }

func (p Program) String() string {
	var sb strings.Builder
	for i := 0; i < p.End; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i == p.I {
			sb.WriteString("^ ")
		}
		sb.WriteString(p.Terms[i].String())
	}
	if p.Done() {
		sb.WriteString(" ^")
	}
	return sb.String()
}

// Frame is one continuation stack entry: either a program view or a native
// continuation that takes over control when it reaches the top.
type Frame struct {
	Program Program
	Native  Handler
	Name    string
}

// ProgramFrame runs p.
func ProgramFrame(p Program) Frame { return Frame{Program: p} }

// NativeFrame runs h once everything above it has finished.
func NativeFrame(name string, h Handler) Frame { return Frame{Native: h, Name: name} }

func (f Frame) String() string {
	if f.Native != nil {
		return fmt.Sprintf("native %v", f.Name)
	}
	return f.Program.String()
}
