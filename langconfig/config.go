// Package langconfig reads treelang.hcl, the workspace file that tells the
// command line and the language server which grammar files define which
// languages:
//
//	language "fire" {
//	  grammar    = ["grammars/fire.parsers"]
//	  extensions = ["fire"]
//	}
package langconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/treelang/grammar"
	"github.com/dhamidi/treelang/program"
)

// FileName is the name of the workspace file.
const FileName = "treelang.hcl"

var log = commonlog.GetLogger("treelang.langconfig")

var ErrNotFound = errors.New(FileName + " not found")

type Config struct {
	Languages []*Language `hcl:"language,block"`

	// Dir is the directory grammar paths are relative to.
	Dir string
}

type Language struct {
	Name       string   `hcl:"name,label"`
	Grammar    []string `hcl:"grammar"`
	Extensions []string `hcl:"extensions,optional"`
}

// Parse decodes a workspace file held in memory. filename is used in
// diagnostics and to resolve relative grammar paths.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	cfg.Dir = filepath.Dir(filename)

	seen := map[string]bool{}
	for _, lang := range cfg.Languages {
		if seen[lang.Name] {
			return nil, fmt.Errorf("%s: language %q declared twice", filename, lang.Name)
		}
		seen[lang.Name] = true
		if len(lang.Grammar) == 0 {
			return nil, fmt.Errorf("%s: language %q has no grammar files", filename, lang.Name)
		}
	}
	return &cfg, nil
}

// Load reads the workspace file at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, path)
}

// Find looks for the workspace file in dir and its parents.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// GrammarPaths resolves the language's grammar files against the config's
// directory.
func (c *Config) GrammarPaths(lang *Language) []string {
	paths := make([]string, len(lang.Grammar))
	for i, p := range lang.Grammar {
		if filepath.IsAbs(p) {
			paths[i] = p
		} else {
			paths[i] = filepath.Join(c.Dir, p)
		}
	}
	return paths
}

// LanguageFor picks the language whose extensions include the extension of
// path. A language without extensions claims its own name.
func (c *Config) LanguageFor(path string) (*Language, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, lang := range c.Languages {
		for _, e := range lang.extensions() {
			if e == ext {
				return lang, true
			}
		}
	}
	return nil, false
}

func (l *Language) extensions() []string {
	if len(l.Extensions) == 0 {
		return []string{l.Name}
	}
	return l.Extensions
}

// Registry builds every configured language with loader and registers it
// under its root id and its configured extensions.
func (c *Config) Registry(loader *grammar.Loader) (*program.Registry, error) {
	registry := program.NewRegistry()
	for _, lang := range c.Languages {
		g, err := loader.LoadFiles(c.GrammarPaths(lang)...)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", lang.Name, err)
		}
		built := program.NewLanguage(g)
		registry.Register(built)
		for _, ext := range lang.extensions() {
			registry.RegisterExtension(ext, built)
		}
		log.Infof("language %s: root %s, extensions %s", lang.Name, built.RootID(), strings.Join(lang.extensions(), ","))
	}
	return registry, nil
}
