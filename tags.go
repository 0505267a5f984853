package pjs

import "strings"

func (vm *VM) create(op, name string) (Object, error) {
	if vm.doc == nil {
		return nil, structural(op, "no document to create objects in")
	}
	return vm.doc.Create(name)
}

// tagOpen pushes a new open object and makes it the whole selection until
// its close tag.
func (vm *VM) tagOpen(name string, st State) (State, error) {
	obj, err := vm.create("<"+name+">", name)
	if err != nil {
		return st, err
	}
	obj.objectCore().opened(true, st.Selection)
	st = st.Push(obj)
	st.Selection = Selection{obj}
	return st, nil
}

func (vm *VM) tagSelfClosed(name string, st State) (State, error) {
	obj, err := vm.create("<"+name+"/>", name)
	if err != nil {
		return st, err
	}
	obj.objectCore().opened(false, st.Selection)
	return st.Push(obj), nil
}

// tagClose unwinds the data stack down to the nearest open object named
// name, attaching everything above it as children in stack order. The object
// stays on the stack, closed, and the selection reverts to what it was when
// the object was opened.
func tagClose(name string, st State) (State, error) {
	op := "</" + name + ">"
	var children []Value
	data := st.Data
	var target Object
	for target == nil {
		v, rest, ok := data.Pop()
		if !ok {
			return st, structural(op, "no open <%v> on the stack", name)
		}
		if obj, isObj := v.(Object); isObj {
			open := obj.objectCore().IsOpen()
			switch {
			case strings.EqualFold(obj.Name(), name) && open:
				target = obj
				continue
			case strings.EqualFold(obj.Name(), name):
				return st, structural(op, "<%v> is already closed", obj.Name())
			case open:
				return st, structural(op, "mismatched tag, <%v> is still open", obj.Name())
			}
		}
		children = append(children, v)
		data = rest
	}

	// children were gathered top first; prepending in that order leaves
	// them in stack order ahead of anything committed while open
	for _, child := range children {
		if _, isObj := child.(Object); !isObj {
			child = Text(Display(child))
		}
		if err := target.Prepend(child); err != nil {
			return st, err
		}
	}
	st.Selection = target.objectCore().close()
	st.Data = data
	return st, nil
}
