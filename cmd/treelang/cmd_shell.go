package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/treelang/format"
	"github.com/dhamidi/treelang/program"
	"github.com/dhamidi/treelang/tree"
)

const (
	historyFile = ".treelang_history"
	promptMain  = "> "
)

const shellHelp = `Type document lines; indent with spaces to nest. Tab completes.
  :print    print the document
  :errors   list the errors
  :compile  compile the document
  :json     print the typed projection
  :fmt      reorder the document
  :undo     remove the last line
  :reset    start an empty document
  :quit     leave`

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [file]",
		Short: "Write a document interactively with completion and checking",
		Long: `Start a line editor that appends each entered line to a document and
reports the errors of that line. The document starts with the contents of
file, if given, and is written back to it on :quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text, filename string
			if len(args) > 0 {
				filename = args[0]
				data, err := os.ReadFile(filename)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("read file: %w", err)
				}
				text = strings.TrimSuffix(string(data), "\n")
			}
			lang, err := loadLanguage(filename)
			if err != nil {
				return err
			}
			sh := newShell(lang, text, cmd.OutOrStdout())
			if err := sh.run(); err != nil {
				return err
			}
			if filename != "" {
				return os.WriteFile(filename, []byte(sh.text()+"\n"), 0644)
			}
			return nil
		},
	}
}

type shell struct {
	lang  *program.Language
	lines []string
	out   io.Writer
}

func newShell(lang *program.Language, text string, out io.Writer) *shell {
	sh := &shell{lang: lang, out: out}
	if text != "" {
		sh.lines = strings.Split(text, tree.NodeBreak)
	}
	return sh
}

func (sh *shell) text() string {
	return strings.Join(sh.lines, tree.NodeBreak)
}

func (sh *shell) run() error {
	fmt.Fprintf(sh.out, "%s shell, :help for commands\n", sh.lang.Name())

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetWordCompleter(sh.complete)

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
		input, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(sh.out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(input)
		}
		if sh.eval(input) {
			return nil
		}
	}
}

// complete offers the completions for the word under the cursor as if
// line were appended to the document.
func (sh *shell) complete(line string, pos int) (head string, completions []string, tail string) {
	doc := sh.lang.Parse(strings.Join(append(sh.lines[:len(sh.lines):len(sh.lines)], line[:pos]), tree.NodeBreak))
	result := doc.AutocompleteAt(len(sh.lines), pos)
	start := min(result.StartChar, pos)
	for _, m := range result.Matches {
		completions = append(completions, m.Text)
	}
	return line[:start], completions, line[pos:]
}

// eval runs a command or appends a line. It reports whether the shell
// should stop.
func (sh *shell) eval(input string) bool {
	switch strings.TrimSpace(input) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(sh.out, shellHelp)
	case ":print":
		fmt.Fprintln(sh.out, sh.text())
	case ":errors":
		for _, e := range sh.lang.Parse(sh.text()).AllErrors() {
			fmt.Fprintln(sh.out, e.Message())
		}
	case ":compile":
		fmt.Fprintln(sh.out, sh.lang.Parse(sh.text()).Compile())
	case ":json":
		if err := format.NewJSONEncoder(sh.out).Encode(sh.lang.Parse(sh.text())); err != nil {
			fmt.Fprintln(sh.out, err)
		}
	case ":fmt":
		sh.replace(sh.lang.Parse(sh.text()).Format())
		fmt.Fprintln(sh.out, sh.text())
	case ":undo":
		if len(sh.lines) > 0 {
			sh.lines = sh.lines[:len(sh.lines)-1]
		}
	case ":reset":
		sh.lines = nil
	default:
		if strings.HasPrefix(strings.TrimSpace(input), ":") {
			fmt.Fprintf(sh.out, "unknown command. Type :help for commands.\n")
			return false
		}
		sh.append(input)
	}
	return false
}

func (sh *shell) replace(text string) {
	sh.lines = nil
	if text != "" {
		sh.lines = strings.Split(text, tree.NodeBreak)
	}
}

// append adds a line and prints the errors found on it.
func (sh *shell) append(line string) {
	sh.lines = append(sh.lines, line)
	doc := sh.lang.Parse(sh.text())
	node := doc.NodeAtLine(len(sh.lines) - 1)
	if node == nil {
		return
	}
	for _, e := range node.Errors() {
		fmt.Fprintln(sh.out, e.Message())
		if s := e.Suggestion(); s != "" {
			fmt.Fprintf(sh.out, "  %s\n", s)
		}
	}
}
