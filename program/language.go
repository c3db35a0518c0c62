// Package program parses documents with a grammar and answers questions
// about them: which definition backs each line, how its words split into
// typed cells, which errors it has and what could be typed next.
//
// A Document owns a mutable tree. Everything derived from it is computed on
// demand and cached against the tree's modification stamps, so editing a
// node through the tree package is always safe.
package program

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/treelang/grammar"
	"github.com/dhamidi/treelang/tree"
)

var log = commonlog.GetLogger("treelang.program")

// Language is a built grammar ready to parse documents.
type Language struct {
	g *grammar.Grammar
}

func NewLanguage(g *grammar.Grammar) *Language {
	return &Language{g: g}
}

// ParseLanguage builds a grammar from source and wraps it.
func ParseLanguage(source string) (*Language, error) {
	g, err := grammar.Parse(source)
	if err != nil {
		return nil, err
	}
	return NewLanguage(g), nil
}

func (l *Language) Grammar() *grammar.Grammar {
	return l.g
}

// RootID is the id of the root definition.
func (l *Language) RootID() string {
	return l.g.Root().ID
}

func (l *Language) Name() string {
	return l.g.Name()
}

// Parse reads text into a new document.
func (l *Language) Parse(text string) *Document {
	return l.ParseTree(tree.Parse(text))
}

// ParseTree wraps an existing tree. The document takes ownership of root.
func (l *Language) ParseTree(root *tree.Node) *Document {
	return &Document{
		lang:  l,
		root:  root,
		nodes: map[*tree.Node]*nodeState{},
		enums: map[string]enumEntry{},
	}
}

// Registry keeps languages by root id and by file extension.
type Registry struct {
	mu          sync.RWMutex
	byRoot      map[string]*Language
	byExtension map[string]*Language
}

func NewRegistry() *Registry {
	return &Registry{
		byRoot:      map[string]*Language{},
		byExtension: map[string]*Language{},
	}
}

// Register adds lang, replacing any language with the same root id or
// claiming the same extensions.
func (r *Registry) Register(lang *Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRoot[lang.RootID()] = lang
	for _, ext := range lang.g.Extensions() {
		r.byExtension[ext] = lang
	}
	log.Debugf("registered language %s", lang.RootID())
}

// RegisterExtension makes lang the language for files ending in ext.
func (r *Registry) RegisterExtension(ext string, lang *Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExtension[ext] = lang
}

func (r *Registry) Lookup(rootID string) (*Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.byRoot[rootID]
	return lang, ok
}

// ForExtension finds the language claiming ext, given without a dot.
func (r *Registry) ForExtension(ext string) (*Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.byExtension[ext]
	return lang, ok
}

// RootIDs lists the registered root ids in sorted order.
func (r *Registry) RootIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byRoot))
	for id := range r.byRoot {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Parse parses text with the language registered under rootID.
func (r *Registry) Parse(rootID, text string) (*Document, error) {
	lang, ok := r.Lookup(rootID)
	if !ok {
		return nil, fmt.Errorf("no language with root %q", rootID)
	}
	return lang.Parse(text), nil
}
