package dom

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pjslang/pjs"
)

// ScriptType marks script elements that Install runs.
const ScriptType = "text/f"

// Install runs the programs embedded in doc, in document order:
// every <script type="text/f"> with nothing selected, then the "f" attribute
// of every element with that element selected. Elements carrying an "f&"
// attribute have it started as a task instead; their handles are returned.
func Install(ctx context.Context, vm *pjs.VM, doc *Document, dict *pjs.Dictionary) ([]*pjs.Task, error) {
	scripts, err := doc.QueryElements(`script[type="` + ScriptType + `"]`)
	if err != nil {
		return nil, err
	}
	for _, script := range scripts {
		if _, err := vm.Eval(ctx, nil, script.Text(), nil, dict); err != nil {
			return nil, errors.Wrap(err, "script")
		}
	}

	all, err := doc.QueryElements("*")
	if err != nil {
		return nil, err
	}
	for _, el := range all {
		src, ok := el.Attr("f")
		if !ok {
			continue
		}
		if _, err := vm.Eval(ctx, pjs.Selection{el}, src, nil, dict); err != nil {
			return nil, errors.Wrapf(err, "%v f=%q", el, src)
		}
	}

	var tasks []*pjs.Task
	for _, el := range all {
		src, ok := el.Attr("f&")
		if !ok {
			continue
		}
		terms, err := pjs.Compile(src)
		if err != nil {
			return tasks, errors.Wrapf(err, "%v f&=%q", el, src)
		}
		tasks = append(tasks, vm.Spawn(ctx, pjs.Selection{el}, pjs.NewProgram(terms), nil, dict))
	}
	return tasks, nil
}
