package pjs

import (
	"context"
	"sort"
	"sync"
)

// Handler implements a word. It receives the machine state with the program
// already advanced past the word, and returns the state to continue from.
// Handlers that wait on the host simply block, honoring ctx.
type Handler func(ctx context.Context, vm *VM, st State) (State, error)

// Vocabulary installs a bundle of words.
type Vocabulary func(dict *Dictionary)

// Dictionary is the global word table. Every operation is individually
// synchronized; sequences of definitions made by concurrent tasks are not.
type Dictionary struct {
	mu    sync.RWMutex
	words map[string]Handler
}

// NewDictionary creates a dictionary holding the given vocabularies, installed
// in order.
func NewDictionary(vocabs ...Vocabulary) *Dictionary {
	dict := &Dictionary{words: make(map[string]Handler)}
	for _, vocab := range vocabs {
		if vocab != nil {
			vocab(dict)
		}
	}
	return dict
}

// Define installs or replaces a word.
func (dict *Dictionary) Define(name string, h Handler) {
	dict.mu.Lock()
	defer dict.mu.Unlock()
	if dict.words == nil {
		dict.words = make(map[string]Handler)
	}
	dict.words[name] = h
}

// Lookup finds a word.
func (dict *Dictionary) Lookup(name string) (Handler, bool) {
	if dict == nil {
		return nil, false
	}
	dict.mu.RLock()
	defer dict.mu.RUnlock()
	h, ok := dict.words[name]
	return h, ok
}

// Delete removes a word.
func (dict *Dictionary) Delete(name string) {
	dict.mu.Lock()
	defer dict.mu.Unlock()
	delete(dict.words, name)
}

// Names lists every defined word.
func (dict *Dictionary) Names() []string {
	if dict == nil {
		return nil
	}
	dict.mu.RLock()
	defer dict.mu.RUnlock()
	names := make([]string, 0, len(dict.words))
	for name := range dict.words {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone snapshots the dictionary; definitions made in either copy afterwards
// are not seen by the other.
func (dict *Dictionary) Clone() *Dictionary {
	dict.mu.RLock()
	defer dict.mu.RUnlock()
	clone := &Dictionary{words: make(map[string]Handler, len(dict.words))}
	for name, h := range dict.words {
		clone.words[name] = h
	}
	return clone
}
