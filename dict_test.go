package pjs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDictionary(t *testing.T) {
	var none *Dictionary
	_, ok := none.Lookup("dup")
	assert.False(t, ok)
	assert.Nil(t, none.Names())

	dict := NewDictionary(ControlWords, nil)
	_, ok = dict.Lookup("times")
	assert.True(t, ok)
	_, ok = dict.Lookup("dup")
	assert.False(t, ok, "expected only control words")

	nop := func(ctx context.Context, vm *VM, st State) (State, error) { return st, nil }
	snap := dict.Clone()
	dict.Define("extra", nop)
	snap.Delete("times")

	_, ok = dict.Lookup("times")
	assert.True(t, ok, "clone deletes must not leak back")
	_, ok = snap.Lookup("extra")
	assert.False(t, ok, "definitions after a clone must not leak into it")
	assert.Equal(t, []string{"!", "&", ",", "->", ";", "?end", "end", "repeat", "while"}, snap.Names())
	assert.Equal(t, []string{"!", "&", ",", "->", ";", "?end", "end", "extra", "repeat", "times", "while"}, dict.Names())
}
