package lsp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const fooGrammar = `fooParser
 root
 inScope barParser fillParser
barParser
 crux bar
 description draws a bar
 cells keywordCell intCell
fillParser
 crux fill
 cells keywordCell colorCell
colorCell
 enum red green blue`

const fooConfig = `language "foo" {
  grammar    = ["foo.parsers"]
  extensions = ["foo"]
}
`

func newTestWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "foo.parsers"), []byte(fooGrammar), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "treelang.hcl"), []byte(fooConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	ws := NewWorkspace(dir)
	if err := ws.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ws, dir
}

func openFile(t *testing.T, ws *Workspace, path, text string) *File {
	t.Helper()
	ws.UpdateFile(path, text)
	var file *File
	if !ws.Do(path, func(f *File) { file = f }) {
		t.Fatalf("%s has no language", path)
	}
	return file
}

func TestWorkspaceLanguages(t *testing.T) {
	ws, dir := newTestWorkspace(t)

	if _, ok := ws.LanguageFor("a.foo"); !ok {
		t.Errorf("no language for .foo")
	}
	if _, ok := ws.LanguageFor("a.txt"); ok {
		t.Errorf("unexpected language for .txt")
	}

	ws.UpdateFile("notes.txt", "hello")
	if ws.Do("notes.txt", func(*File) {}) {
		t.Errorf("notes.txt should have no document")
	}
	if diff := cmp.Diff([]string{"notes.txt"}, ws.Paths()); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	ws.RemoveFile("notes.txt")
	if len(ws.Paths()) != 0 {
		t.Errorf("file not removed")
	}

	if !ws.IsGrammarFile(filepath.Join(dir, "foo.parsers")) {
		t.Errorf("foo.parsers should be a grammar file")
	}
	if !ws.IsGrammarFile(filepath.Join(dir, "treelang.hcl")) {
		t.Errorf("treelang.hcl should trigger a reload")
	}
	if ws.IsGrammarFile(filepath.Join(dir, "a.foo")) {
		t.Errorf("a.foo is not a grammar file")
	}
}

func TestWorkspaceWithoutConfig(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	if err := ws.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := ws.LanguageFor("a.foo"); ok {
		t.Errorf("unexpected language")
	}
}

func TestWorkspaceWithGrammarPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.parsers")
	if err := os.WriteFile(path, []byte(fooGrammar), 0o644); err != nil {
		t.Fatal(err)
	}
	ws := NewWorkspace(dir, path)
	if err := ws.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := ws.LanguageFor("doc.foo"); !ok {
		t.Errorf("grammar name should claim its extension")
	}
	if diff := cmp.Diff([]string{path}, ws.GrammarFiles()); diff != "" {
		t.Errorf("grammar files (-want +got):\n%s", diff)
	}
}

func TestDiagnostics(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	f := openFile(t, ws, "doc.foo", "bar 3\nfill rad\nbaz")

	diagnostics := Diagnostics(f.Document)
	if len(diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(diagnostics), diagnostics)
	}

	invalid := diagnostics[0]
	if invalid.Code.Value != "InvalidWord" {
		t.Errorf("code: got %v", invalid.Code.Value)
	}
	if diff := cmp.Diff(lineRange(1, 5, 8), invalid.Range); diff != "" {
		t.Errorf("range (-want +got):\n%s", diff)
	}

	unknown := diagnostics[1]
	if unknown.Code.Value != "UnknownParser" {
		t.Errorf("code: got %v", unknown.Code.Value)
	}
	if diff := cmp.Diff(lineRange(2, 0, 3), unknown.Range); diff != "" {
		t.Errorf("range (-want +got):\n%s", diff)
	}
}

func TestCompletionItems(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	f := openFile(t, ws, "doc.foo", "fill ")

	items := CompletionItems(f.Document, 0, 5)
	var labels []string
	for _, item := range items {
		labels = append(labels, item.Label)
		if *item.Kind != protocol.CompletionItemKindValue {
			t.Errorf("%s: kind %v", item.Label, *item.Kind)
		}
	}
	if diff := cmp.Diff([]string{"red", "green", "blue"}, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}

	items = CompletionItems(f.Document, 1, 0)
	labels = nil
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	if diff := cmp.Diff([]string{"bar", "fill"}, labels); diff != "" {
		t.Errorf("first words (-want +got):\n%s", diff)
	}
}

func TestHoverAt(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	f := openFile(t, ws, "doc.foo", "bar 3")

	hover := HoverAt(f.Document, 0, 5)
	if hover == nil {
		t.Fatal("no hover")
	}
	content := hover.Contents.(protocol.MarkupContent).Value
	for _, want := range []string{"**barParser**", "draws a bar", "`intCell`"} {
		if !strings.Contains(content, want) {
			t.Errorf("hover %q lacks %q", content, want)
		}
	}
	if diff := cmp.Diff(lineRange(0, 4, 5), *hover.Range); diff != "" {
		t.Errorf("range (-want +got):\n%s", diff)
	}

	if HoverAt(f.Document, 3, 0) != nil {
		t.Errorf("hover past the end of the document")
	}
}

func TestFormatEdits(t *testing.T) {
	ws, _ := newTestWorkspace(t)

	f := openFile(t, ws, "doc.foo", "fill red\nbar 3")
	edits := FormatEdits(f)
	want := []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 1, Character: 5},
		},
		NewText: "bar 3\nfill red",
	}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits (-want +got):\n%s", diff)
	}

	f = openFile(t, ws, "doc.foo", "bar 3\nfill red")
	if edits := FormatEdits(f); len(edits) != 0 {
		t.Errorf("formatted document got edits: %v", edits)
	}
	if f.Document.String() != "bar 3\nfill red" {
		t.Errorf("open document was modified")
	}
}

func TestCodeActions(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	f := openFile(t, ws, "doc.foo", "bar 3\nfill rad")
	uri := "file:///tmp/doc.foo"

	actions := CodeActions(f, uri, lineRange(1, 0, 0))
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	action := actions[0]
	if action.Title != `Change "rad" to "red"` {
		t.Errorf("title: got %s", action.Title)
	}
	edits := action.Edit.Changes[uri]
	if len(edits) != 1 || edits[0].NewText != "bar 3\nfill red" {
		t.Errorf("edits: got %v", edits)
	}
	if f.Document.String() != "bar 3\nfill rad" {
		t.Errorf("open document was modified")
	}

	if actions := CodeActions(f, uri, lineRange(0, 0, 0)); len(actions) != 0 {
		t.Errorf("actions outside the range: %v", actions)
	}
}

func TestGrammarWatcherScan(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	w := NewGrammarWatcher(ws, nil)

	if w.scan() {
		t.Errorf("first scan should only record")
	}
	if w.scan() {
		t.Errorf("nothing changed")
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "foo.parsers"), later, later); err != nil {
		t.Fatal(err)
	}
	if !w.scan() {
		t.Errorf("touched grammar not noticed")
	}
}

func TestURIs(t *testing.T) {
	path, err := uriToPath("file:///home/me/doc.foo")
	if err != nil {
		t.Fatal(err)
	}
	if path != "/home/me/doc.foo" {
		t.Errorf("path: got %s", path)
	}
	if uri := pathToURI(path); uri != "file:///home/me/doc.foo" {
		t.Errorf("uri: got %s", uri)
	}
}

func TestFinalNewline(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	f := openFile(t, ws, "doc.foo", "fill red\nbar 3\n")

	if diagnostics := Diagnostics(f.Document); len(diagnostics) != 0 {
		t.Errorf("final newline reported: %v", diagnostics)
	}
	want := []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 2, Character: 0},
		},
		NewText: "bar 3\nfill red\n",
	}}
	if diff := cmp.Diff(want, FormatEdits(f)); diff != "" {
		t.Errorf("edits (-want +got):\n%s", diff)
	}
}
