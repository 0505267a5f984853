package pjs

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Dump writes a readable snapshot of st: the selection, every continuation
// frame from the top down, and the data stack from the top down.
func Dump(w io.Writer, st State) error {
	d := stateDumper{out: w}
	d.dump(st)
	return d.err
}

type stateDumper struct {
	out io.Writer
	buf bytes.Buffer
	err error
}

func (d *stateDumper) line(mess string, args ...interface{}) {
	if d.err != nil {
		return
	}
	d.buf.Reset()
	fmt.Fprintf(&d.buf, mess, args...)
	d.buf.WriteByte('\n')
	_, d.err = d.buf.WriteTo(d.out)
}

func (d *stateDumper) dump(st State) {
	d.line("# VM Dump")
	d.dumpSelection(st.Selection)
	d.dumpCont(st.Cont)
	d.dumpData(st.Data)
	if st.Dict != nil {
		d.line("  dict: %v words", len(st.Dict.Names()))
	}
}

func (d *stateDumper) dumpSelection(sel Selection) {
	if len(sel) == 0 {
		d.line("  selection: none")
		return
	}
	parts := make([]string, len(sel))
	for i, obj := range sel {
		parts[i] = Display(obj)
		if words := obj.objectCore().Words(); len(words) > 0 {
			parts[i] += "{" + strings.Join(words, " ") + "}"
		}
	}
	d.line("  selection: %v", strings.Join(parts, " "))
}

func (d *stateDumper) dumpCont(cont *Cont) {
	d.line("# Continuation")
	width := len(fmt.Sprint(cont.Len()))
	for i := 0; cont != nil; i++ {
		frame, rest, _ := cont.Pop()
		d.line("  %*d: %v", width, i, frame)
		cont = rest
	}
}

func (d *stateDumper) dumpData(data *Stack) {
	d.line("# Data")
	width := len(fmt.Sprint(data.Len()))
	for i := 0; data != nil; i++ {
		v, rest, _ := data.Pop()
		d.line("  %*d: %v %v", width, i, TypeName(v), Literal(v))
		data = rest
	}
}
