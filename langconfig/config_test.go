package langconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/treelang/grammar"
)

const workspace = `
language "fire" {
  grammar    = ["grammars/fire.parsers", "grammars/common.parsers"]
  extensions = ["fire", "fi"]
}

language "notes" {
  grammar = ["notes.parsers"]
}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(workspace), "/work/"+FileName)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Dir: "/work",
		Languages: []*Language{
			{Name: "fire", Grammar: []string{"grammars/fire.parsers", "grammars/common.parsers"}, Extensions: []string{"fire", "fi"}},
			{Name: "notes", Grammar: []string{"notes.parsers"}},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	tests := []struct {
		path string
		want string
	}{
		{"a/b.fire", "fire"},
		{"x.fi", "fire"},
		{"todo.notes", "notes"},
		{"readme.md", ""},
	}
	for _, tt := range tests {
		got := ""
		if lang, ok := cfg.LanguageFor(tt.path); ok {
			got = lang.Name
		}
		if got != tt.want {
			t.Errorf("LanguageFor(%q): got %q, want %q", tt.path, got, tt.want)
		}
	}

	paths := cfg.GrammarPaths(cfg.Languages[0])
	if diff := cmp.Diff([]string{"/work/grammars/fire.parsers", "/work/grammars/common.parsers"}, paths); diff != "" {
		t.Errorf("grammar paths (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `language "x" {`},
		{"missing grammar attribute", `language "x" {}`},
		{"empty grammar list", `language "x" { grammar = [] }`},
		{"duplicate", "language \"x\" { grammar = [\"a\"] }\nlanguage \"x\" { grammar = [\"b\"] }"},
		{"unknown block", `plugin "x" {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src), FileName); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFindAndRegistry(t *testing.T) {
	dir := t.TempDir()
	write := func(name, text string) {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(FileName, `language "shop" {
  grammar    = ["grammars/shop.parsers"]
  extensions = ["shop"]
}`)
	write("grammars/shop.parsers", "shopParser\n root\n inScope itemParser\nitemParser\n crux item\n cells keywordCell intCell")
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	registry, err := cfg.Registry(grammar.NewLoader(nil))
	if err != nil {
		t.Fatal(err)
	}
	lang, ok := registry.ForExtension("shop")
	if !ok || lang.RootID() != "shopParser" {
		t.Fatalf("shop language not registered: %v", registry.RootIDs())
	}
	if errs := lang.Parse("item 2").AllErrors(); len(errs) != 0 {
		t.Errorf("errors: %v", errs)
	}

	if _, err := Find(t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find in an empty tree: got %v", err)
	}
}
