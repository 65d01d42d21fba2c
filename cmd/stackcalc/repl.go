package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/zephyrtronium/stackcalc"
)

const historyFile = ".stackcalc_history"

func repl[T any](env *stackcalc.Env[T], echo bool) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		return complete(env.Table().Names(), line, pos)
	})

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading input")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			switch strings.ToLower(line) {
			case ":quit":
				return nil
			case ":vars":
				listSymbols(os.Stdout, env)
			default:
				fmt.Println("unknown command. Type :vars to list definitions or :quit to exit.")
			}
			continue
		}
		// A termination reports its value; the session continues.
		evalLine(os.Stdout, env, line, echo)
	}
}

// listSymbols prints the user's variables, subroutines, and transforms.
func listSymbols[T any](w io.Writer, env *stackcalc.Env[T]) {
	for _, ent := range env.Symbols(stackcalc.EntryVariable, stackcalc.EntrySubroutine, stackcalc.EntryTransform) {
		switch ent.Kind {
		case stackcalc.EntryVariable:
			if ent.Value.Kind == stackcalc.ValueUndefined {
				continue
			}
			fmt.Fprintf(w, "%s = %s\n", ent.Name, env.Format(ent.Value))
		case stackcalc.EntrySubroutine:
			fmt.Fprintf(w, "def %s\n", ent.Describe(env.Arith()))
		default:
			fmt.Fprintf(w, "%s = %s\n", ent.Name, ent.Describe(env.Arith()))
		}
	}
}

// complete completes the word ending at rune offset pos from names.
func complete(names []string, line string, pos int) (head string, completions []string, tail string) {
	r := []rune(line)
	if pos > len(r) {
		pos = len(r)
	}
	before := string(r[:pos])
	tail = string(r[pos:])
	start := strings.LastIndexFunc(before, func(r rune) bool {
		return strings.ContainsRune(stackcalc.Operators, r) || r == ' ' || r == '\t'
	})
	if start >= 0 {
		_, sz := utf8.DecodeRuneInString(before[start:])
		start += sz
	} else {
		start = 0
	}
	word := before[start:]
	if word == "" {
		return before, nil, tail
	}
	for _, name := range names {
		if strings.HasPrefix(name, word) {
			completions = append(completions, name)
		}
	}
	return before[:start], completions, tail
}
