package pjs

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjslang/pjs/internal/panicerr"
)

func TestVM_eval(t *testing.T) {
	evalTestCases{
		evalTest("empty").eval("").expectData(),
		evalTest("numbers").eval("-12 3.5").expectData(Number(-12), Number(3.5)),
		evalTest("string").eval("{a{b}c}").expectData(Text("a{b}c")),
		evalTest("initial data").withData(Number(3), Number(4)).eval("+").expectData(Number(7)),
		evalTest("call block").eval("(1 2) 3").expectData(Number(1), Number(2), Number(3)),
		evalTest("nested blocks").eval("((1) (2 (3)))").expectData(Number(1), Number(2), Number(3)),
		evalTest("array").eval("[1 2 3]").expectData(Array{Number(1), Number(2), Number(3)}),
		evalTest("empty array").eval("[]").expectData(Array{}),
		evalTest("array of computed").eval("[1 2 + 4]").expectData(Array{Number(3), Number(4)}),
		evalTest("array above data").eval("9 [1]").expectData(Number(9), Array{Number(1)}),
		evalTest("array consuming below").eval("1 [drop]").expectError(new(*StackShapeError)),
		evalTest("quote").eval("(: 1 2)").expectData(QuoteOf([]Term{num("1", 1), num("2", 2)})),
		evalTest("unknown word").eval("1 nope").expectError(new(*ResolutionError)),
		evalTest("underflow").eval("dup").expectError(new(*StackShapeError)),
		evalTest("eval error").eval("1 2 {x} -").expectError(new(*EvalError)),
		evalTest("compile error").eval("(1").expectError(new(*ParseError)),
		evalTest("lex error").eval("\xff").expectError(new(*LexError)),
		evalTest("step limit").
			withOptions(WithMaxSteps(100)).
			eval("(1 drop repeat)").
			expectErrorIs(ErrStepLimit),
		evalTest("step limit not reached").
			withOptions(WithMaxSteps(100)).
			eval("0 (: +) 3 times").
			expectData(Number(6)),
		evalTest("deadline").
			withTimeout(10 * time.Millisecond).
			eval("(1 drop repeat)").
			expectErrorIs(context.DeadlineExceeded),
		evalTest("handler panic").
			withWords(func(dict *Dictionary) {
				dict.Define("boom", func(ctx context.Context, vm *VM, st State) (State, error) {
					panic("boom")
				})
			}).
			eval("1 boom").
			expectError(new(*panicerr.PanicError)),
		evalTest("native handler").
			withWords(func(dict *Dictionary) {
				dict.Define("answer", func(ctx context.Context, vm *VM, st State) (State, error) {
					return st.Push(Number(42)), nil
				})
			}).
			eval("answer 1 +").
			expectData(Number(43)),
		evalTest("host error").
			withWords(func(dict *Dictionary) {
				dict.Define("fail", func(ctx context.Context, vm *VM, st State) (State, error) {
					return st, errors.New("host says no")
				})
			}).
			eval("fail").
			expectError(new(*EvalError)),
	}.run(t)
}

func TestVM_evalErrorTerm(t *testing.T) {
	_, err := New().Eval(context.Background(), nil, "1 2 {x} -", nil, NewDictionary(Core))
	var eerr *EvalError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, Word{"-"}, eerr.Term)
	assert.Equal(t, "evaluating -: -: expected number, got text", err.Error())

	var serr *StackShapeError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "-", serr.Op)
}

func TestRun(t *testing.T) {
	terms, err := Compile("1 2")
	require.NoError(t, err)
	data, err := Run(context.Background(), nil, NewProgram(terms), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []Value{Number(1), Number(2)}, data.Slice())
}

func TestVM_deterministic(t *testing.T) {
	const src = `0 (: dup * +) 4 times [1 2 3] {length} get1 {n} +`
	var first []Value
	for i := 0; i < 5; i++ {
		data, err := New().Eval(context.Background(), nil, src, nil, NewDictionary(Core))
		require.NoError(t, err)
		if i == 0 {
			first = data.Slice()
			assert.Equal(t, []Value{Number(30), Text("3n")}, first)
		} else {
			assert.Equal(t, first, data.Slice())
		}
	}
}

func TestVM_persistentData(t *testing.T) {
	vm := New()
	dict := NewDictionary(Core)
	base := ListOf[Value](Number(1), Number(2))

	data, err := vm.Eval(context.Background(), nil, "+ 10 *", base, dict)
	require.NoError(t, err)
	assert.Equal(t, []Value{Number(30)}, data.Slice())
	assert.Equal(t, []Value{Number(1), Number(2)}, base.Slice(), "input stack must be untouched")
}

func TestVM_failureReturnsNoStack(t *testing.T) {
	data, err := New().Eval(context.Background(), nil, "1 2 nope", nil, NewDictionary(Core))
	assert.Error(t, err)
	assert.Nil(t, data)
}

func TestVM_trace(t *testing.T) {
	var lines []string
	vm := New(WithLogf(func(mess string, args ...interface{}) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintf(mess, args...)))
	}))
	_, err := vm.Eval(context.Background(), nil, "1 dup", nil, NewDictionary(Core))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"> 1 -- d:[] c:1",
		"> dup -- d:[1] c:1",
	}, lines)
}

func TestVM_output(t *testing.T) {
	var out, tee bytes.Buffer
	vm := New(WithOutput(&out), WithTee(&tee))
	_, err := vm.Eval(context.Background(), nil, "{hello} log drop 1 2 + log", nil, NewDictionary(Core))
	require.NoError(t, err)
	assert.Equal(t, "hello\n3\n", out.String())
	assert.Equal(t, out.String(), tee.String())
}
