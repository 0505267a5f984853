package dom

import (
	"context"

	"github.com/pjslang/pjs"
)

// Listener handles one dispatched event. The event record carries "type",
// "target" and "detail".
type Listener func(ctx context.Context, event pjs.Record) error

// On adds a listener for event.
func (el *Element) On(event string, l Listener) {
	el.lmu.Lock()
	defer el.lmu.Unlock()
	if el.listeners == nil {
		el.listeners = make(map[string][]Listener)
	}
	el.listeners[event] = append(el.listeners[event], l)
}

func (el *Element) listenersFor(event string) []Listener {
	el.lmu.Lock()
	defer el.lmu.Unlock()
	return append([]Listener(nil), el.listeners[event]...)
}

// Dispatch fires event at target, then at each of its ancestors in turn.
// Every listener runs even if an earlier one failed; the first failure is
// returned.
func (doc *Document) Dispatch(ctx context.Context, target *Element, event string, detail pjs.Value) error {
	ev := pjs.Record{
		"type":   pjs.Text(event),
		"target": target,
	}
	if detail != nil {
		ev["detail"] = detail
	}
	var first error
	for el := target; el != nil; el = el.ParentElement() {
		for _, l := range el.listenersFor(event) {
			if err := l(ctx, ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
