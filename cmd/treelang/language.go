package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/treelang/grammar"
	"github.com/dhamidi/treelang/langconfig"
	"github.com/dhamidi/treelang/program"
)

const configName = langconfig.FileName

type options struct {
	verbose  int
	grammars []string
}

var opts options

var loader = grammar.NewLoader(grammar.NewMemoryCache())

// loadGrammar builds the grammar for the document at path. The --grammar
// files win; otherwise the language is looked up in the workspace file by
// the document's extension. With an empty path the workspace must declare
// exactly one language.
func loadGrammar(path string) (*grammar.Grammar, error) {
	if len(opts.grammars) > 0 {
		return loader.LoadFiles(opts.grammars...)
	}

	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	configPath, err := langconfig.Find(dir)
	if errors.Is(err, langconfig.ErrNotFound) {
		return nil, fmt.Errorf("no --grammar given and no %s found", configName)
	}
	if err != nil {
		return nil, err
	}
	cfg, err := langconfig.Load(configPath)
	if err != nil {
		return nil, err
	}

	var lang *langconfig.Language
	switch {
	case path != "":
		found, ok := cfg.LanguageFor(path)
		if !ok {
			return nil, fmt.Errorf("%s: no language in %s claims %s", configPath, configName, filepath.Base(path))
		}
		lang = found
	case len(cfg.Languages) == 1:
		lang = cfg.Languages[0]
	default:
		return nil, fmt.Errorf("%s declares %d languages; pass a file or --grammar", configPath, len(cfg.Languages))
	}
	log.Debugf("using language %s from %s", lang.Name, configPath)
	return loader.LoadFiles(cfg.GrammarPaths(lang)...)
}

func loadLanguage(path string) (*program.Language, error) {
	g, err := loadGrammar(path)
	if err != nil {
		return nil, err
	}
	for _, w := range g.Warnings() {
		log.Warning(w.String())
	}
	return program.NewLanguage(g), nil
}

// readSource reads the file named by args, or stdin without arguments. The
// final newline of the file is not part of the document.
func readSource(stdin io.Reader, args []string) (text, filename string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), "", nil
	}
	filename = args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", "", fmt.Errorf("read file: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), filename, nil
}

// parseSource reads a document and parses it with its language.
func parseSource(stdin io.Reader, args []string) (*program.Document, string, error) {
	text, filename, err := readSource(stdin, args)
	if err != nil {
		return nil, "", err
	}
	lang, err := loadLanguage(filename)
	if err != nil {
		return nil, "", err
	}
	return lang.Parse(text), filename, nil
}
