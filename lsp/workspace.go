package lsp

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/treelang/grammar"
	"github.com/dhamidi/treelang/langconfig"
	"github.com/dhamidi/treelang/program"
)

// Workspace holds the languages of a project and the documents open in the
// editor. Documents are not safe for concurrent use, so every access to a
// file goes through Do.
type Workspace struct {
	mu       sync.Mutex
	rootDir  string
	grammars []string
	loader   *grammar.Loader
	config   *langconfig.Config
	registry *program.Registry
	files    map[string]*File
}

// File is an open document with the language it was parsed with. A final
// newline in Text is not part of the document.
type File struct {
	Path     string
	Text     string
	Language *program.Language
	Document *program.Document
}

// NewWorkspace creates a workspace rooted at rootDir. When grammarPaths is
// empty the languages come from the treelang.hcl found from rootDir upwards.
func NewWorkspace(rootDir string, grammarPaths ...string) *Workspace {
	return &Workspace{
		rootDir:  rootDir,
		grammars: grammarPaths,
		loader:   grammar.NewLoader(grammar.NewMemoryCache()),
		registry: program.NewRegistry(),
		files:    make(map[string]*File),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// Load reads the languages and reparses every open file with them.
func (w *Workspace) Load() error {
	registry, config, err := w.buildRegistry()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry = registry
	w.config = config
	for path, f := range w.files {
		w.parseLocked(path, f.Text)
	}
	return nil
}

func (w *Workspace) buildRegistry() (*program.Registry, *langconfig.Config, error) {
	if len(w.grammars) > 0 {
		g, err := w.loader.LoadFiles(w.grammars...)
		if err != nil {
			return nil, nil, err
		}
		registry := program.NewRegistry()
		registry.Register(program.NewLanguage(g))
		return registry, nil, nil
	}

	path, err := langconfig.Find(w.rootDir)
	if errors.Is(err, langconfig.ErrNotFound) {
		log.Warningf("no %s in %s, no languages available", langconfig.FileName, w.rootDir)
		return program.NewRegistry(), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	config, err := langconfig.Load(path)
	if err != nil {
		return nil, nil, err
	}
	registry, err := config.Registry(w.loader)
	if err != nil {
		return nil, nil, err
	}
	return registry, config, nil
}

// LanguageFor finds the language for a file by its extension.
func (w *Workspace) LanguageFor(path string) (*program.Language, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.languageForLocked(path)
}

func (w *Workspace) languageForLocked(path string) (*program.Language, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return w.registry.ForExtension(ext)
}

// UpdateFile stores the text of a file and parses it. Files without a
// language are kept so they can be parsed after a reload.
func (w *Workspace) UpdateFile(path, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.parseLocked(path, text)
}

func (w *Workspace) parseLocked(path, text string) {
	f := &File{Path: path, Text: text}
	if lang, ok := w.languageForLocked(path); ok {
		f.Language = lang
		f.Document = lang.Parse(strings.TrimSuffix(text, "\n"))
	}
	w.files[path] = f
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

// Do runs fn with the open file at path. It reports false when the file is
// not open or has no language.
func (w *Workspace) Do(path string, fn func(f *File)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[path]
	if !ok || f.Document == nil {
		return false
	}
	fn(f)
	return true
}

// Paths lists the open files.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// GrammarFiles lists the files whose changes require a reload: the grammar
// files of every language and the workspace file itself.
func (w *Workspace) GrammarFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.grammars) > 0 {
		return append([]string(nil), w.grammars...)
	}
	if w.config == nil {
		return nil
	}
	files := []string{filepath.Join(w.config.Dir, langconfig.FileName)}
	for _, lang := range w.config.Languages {
		files = append(files, w.config.GrammarPaths(lang)...)
	}
	return files
}

// IsGrammarFile reports whether path is one of GrammarFiles.
func (w *Workspace) IsGrammarFile(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, f := range w.GrammarFiles() {
		if candidate, err := filepath.Abs(f); err == nil && candidate == abs {
			return true
		}
	}
	return false
}

func (f *File) String() string {
	if f.Language == nil {
		return fmt.Sprintf("%s (no language)", f.Path)
	}
	return fmt.Sprintf("%s (%s)", f.Path, f.Language.RootID())
}
