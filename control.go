package pjs

import (
	"context"
	"math"
)

// ControlWords installs the words that give the language its control flow.
// They work by editing the continuation stack: the frame on top of it is the
// block that contains the word being run.
func ControlWords(dict *Dictionary) {
	dict.Define(",", and)
	dict.Define(";", or)
	dict.Define("->", ifThenElse)
	dict.Define("repeat", repeat)
	dict.Define("while", while)
	dict.Define("times", times)
	dict.Define("end", end)
	dict.Define("?end", maybeEnd)
	dict.Define("!", invoke)
	dict.Define("&", spawn)
}

// and continues the block on true; on false it leaves the false value and
// abandons the block.
func and(ctx context.Context, vm *VM, st State) (State, error) {
	v, rest, ok := st.Data.Pop()
	if !ok {
		return st, underflow(",", 1)
	}
	if Truthy(v) {
		st.Data = rest
	} else {
		st.Cont = st.Cont.Tail()
	}
	return st, nil
}

// or abandons the block leaving the true value; on false it continues.
func or(ctx context.Context, vm *VM, st State) (State, error) {
	v, rest, ok := st.Data.Pop()
	if !ok {
		return st, underflow(";", 1)
	}
	if Truthy(v) {
		st.Cont = st.Cont.Tail()
	} else {
		st.Data = rest
	}
	return st, nil
}

func currentBlock(op string, st State) (Program, *Cont, error) {
	frame, rest, ok := st.Cont.Pop()
	if !ok || frame.Native != nil {
		return Program{}, nil, structural(op, "not inside a block")
	}
	return frame.Program, rest, nil
}

// ifThenElse implements "cond -> then ; else": the rest of the block is split
// at its next top level ";" and only one side runs.
func ifThenElse(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("->", 1)
	}
	p, rest, err := currentBlock("->", st)
	if err != nil {
		return st, err
	}
	st.Data = data

	semi := -1
	for i := p.I; i < p.End; i++ {
		if w, isWord := p.Terms[i].(Word); isWord && w.Name == ";" {
			semi = i
			break
		}
	}

	switch {
	case Truthy(v) && semi >= 0:
		st.Cont = rest.Push(ProgramFrame(p.Slice(p.I, semi)))
	case Truthy(v):
		// no else branch, run the rest of the block
	case semi >= 0:
		st.Cont = rest.Push(ProgramFrame(p.Slice(semi+1, p.End)))
	default:
		st.Cont = rest
	}
	return st, nil
}

func repeat(ctx context.Context, vm *VM, st State) (State, error) {
	p, rest, err := currentBlock("repeat", st)
	if err != nil {
		return st, err
	}
	st.Cont = rest.Push(ProgramFrame(p.Restart()))
	return st, nil
}

func while(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("while", 1)
	}
	p, rest, err := currentBlock("while", st)
	if err != nil {
		return st, err
	}
	st.Data = data
	if Truthy(v) {
		st.Cont = rest.Push(ProgramFrame(p.Restart()))
	} else {
		st.Cont = rest
	}
	return st, nil
}

// times runs a quote once per index 1..n, with the index pushed before each
// iteration. Inside the quote "end" skips to the next iteration.
func times(ctx context.Context, vm *VM, st State) (State, error) {
	vs, data, err := popN("times", st.Data, 2)
	if err != nil {
		return st, err
	}
	body, isQuote := vs[0].(Quote)
	if !isQuote {
		return st, wrongType("times", "quote", vs[0])
	}
	count, isNumber := vs[1].(Number)
	if !isNumber {
		return st, wrongType("times", "number", vs[1])
	}
	st.Data = data
	return timesFrom(body.Terms, 1, int(math.Floor(float64(count))))(ctx, vm, st)
}

func timesFrom(body []Term, i, n int) Handler {
	return func(ctx context.Context, vm *VM, st State) (State, error) {
		if i > n {
			return st, nil
		}
		st.Cont = st.Cont.
			Push(NativeFrame("times", timesFrom(body, i+1, n))).
			Push(ProgramFrame(NewProgram(body)))
		return st.Push(Number(i)), nil
	}
}

func end(ctx context.Context, vm *VM, st State) (State, error) {
	st.Cont = st.Cont.Tail()
	return st, nil
}

func maybeEnd(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("?end", 1)
	}
	st.Data = data
	if Truthy(v) {
		st.Cont = st.Cont.Tail()
	}
	return st, nil
}

// invoke runs a quote in place, or calls a native function.
func invoke(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("!", 1)
	}
	st.Data = data
	switch code := v.(type) {
	case Quote:
		st.Cont = st.Cont.Push(ProgramFrame(NewProgram(code.Terms)))
		return st, nil
	case Func:
		return code(ctx, vm, st)
	}
	return st, wrongType("!", "quote or function", v)
}

// spawn starts a quote as an independent task and carries on at once.
func spawn(ctx context.Context, vm *VM, st State) (State, error) {
	v, data, ok := st.Data.Pop()
	if !ok {
		return st, underflow("&", 1)
	}
	var (
		prog      Program
		taskStack = data
	)
	switch code := v.(type) {
	case Quote:
		prog = NewProgram(code.Terms)
	case Func:
		prog = NewProgram([]Term{Word{Name: "!"}})
		taskStack = data.Push(code)
	default:
		return st, wrongType("&", "quote or function", v)
	}
	st.Data = data
	vm.Spawn(ctx, st.Selection, prog, taskStack, st.Dict)
	return st, nil
}
