package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/treelang/tree"
)

// Cache stores built grammars by content key.
type Cache interface {
	Get(key string) (*Grammar, bool)
	Put(key string, g *Grammar)
}

// MemoryCache is a Cache backed by a map. It is safe for concurrent use.
type MemoryCache struct {
	mu       sync.Mutex
	grammars map[string]*Grammar
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{grammars: map[string]*Grammar{}}
}

func (c *MemoryCache) Get(key string) (*Grammar, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.grammars[key]
	return g, ok
}

func (c *MemoryCache) Put(key string, g *Grammar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grammars[key] = g
}

// Len reports how many grammars are cached.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.grammars)
}

// Source is one named piece of grammar text.
type Source struct {
	ID   string
	Text string
}

// Loader builds grammars from one or more sources, reusing previously built
// grammars through its cache.
type Loader struct {
	cache    Cache
	readFile func(string) ([]byte, error)
}

type LoaderOption func(*Loader)

// WithReadFile replaces the function used to read grammar files.
func WithReadFile(readFile func(string) ([]byte, error)) LoaderOption {
	return func(l *Loader) {
		l.readFile = readFile
	}
}

func NewLoader(cache Cache, opts ...LoaderOption) *Loader {
	if cache == nil {
		cache = NewMemoryCache()
	}
	l := &Loader{cache: cache, readFile: os.ReadFile}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFiles reads every path and builds one grammar from their
// concatenation.
func (l *Loader) LoadFiles(paths ...string) (*Grammar, error) {
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		data, err := l.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read grammar: %w", err)
		}
		sources = append(sources, Source{ID: path, Text: string(data)})
	}
	return l.Load(sources...)
}

// Load builds a grammar from sources concatenated in id order. The cache key
// is a SHA-256 digest of the sorted ids together with their text, so editing
// a file yields a new key.
func (l *Loader) Load(sources ...Source) (*Grammar, error) {
	sources = sortedSources(sources)
	key := CacheKey(sources)
	if g, ok := l.cache.Get(key); ok {
		log.Debugf("grammar cache hit %s", key[:12])
		return g, nil
	}
	log.Debugf("grammar cache miss %s", key[:12])

	texts := make([]string, len(sources))
	for i, s := range sources {
		texts[i] = strings.TrimRight(s.Text, tree.NodeBreak)
	}
	g, err := Parse(strings.Join(texts, tree.NodeBreak))
	if err != nil {
		return nil, err
	}
	l.cache.Put(key, g)
	return g, nil
}

// CacheKey computes the content address of a set of sources.
func CacheKey(sources []Source) string {
	h := sha256.New()
	for _, s := range sortedSources(sources) {
		textSum := sha256.Sum256([]byte(s.Text))
		fmt.Fprintf(h, "%s\x00%x\x00", s.ID, textSum)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortedSources(sources []Source) []Source {
	sorted := append([]Source(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
