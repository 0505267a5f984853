package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/pjslang/pjs"
	"github.com/pjslang/pjs/internal/logio"
)

const prompt = "pjs> "

// repl evaluates one line at a time against a stack and dictionary that
// persist across lines. A failed line leaves the stack as it was.
func repl(ctx context.Context, vm *pjs.VM, dict *pjs.Dictionary, log *logio.Logger) error {
	cli := liner.NewLiner()
	defer cli.Close()
	cli.SetCtrlCAborts(true)
	cli.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		return completeWord(dict.Names(), line, pos)
	})

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		cli.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			cli.WriteHistory(f)
			f.Close()
		}
	}()

	var data *pjs.Stack
	for ctx.Err() == nil {
		line, err := cli.Prompt(prompt)
		switch err {
		case nil:
		case liner.ErrPromptAborted:
			continue
		default:
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cli.AppendHistory(line)

		result, err := vm.Eval(ctx, nil, line, data, dict)
		if err != nil {
			log.Printf("ERROR", "%v", err)
			continue
		}
		data = result
		fmt.Println(formatStack(data))
	}
	return ctx.Err()
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pjs_history"
	}
	return filepath.Join(home, ".pjs_history")
}

func formatStack(data *pjs.Stack) string {
	items := data.Slice()
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = pjs.Literal(v)
	}
	return strings.Join(parts, " ")
}

// completeWord completes the word under the cursor from names.
func completeWord(names []string, line string, pos int) (head string, completions []string, tail string) {
	head, tail = line[:pos], line[pos:]
	start := strings.LastIndexAny(head, " \t()[]") + 1
	prefix := head[start:]
	head = head[:start]
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			completions = append(completions, name)
		}
	}
	sort.Strings(completions)
	return head, completions, tail
}
