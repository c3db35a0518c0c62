package lsp

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/treelang/program"
)

const diagnosticSource = lsName

// errorRange is where an error is shown: the offending word, or the whole
// line for line errors. Errors on the root are shown on the first line.
func errorRange(e *program.Error) protocol.Range {
	node := e.Node()
	if node.IsRoot() {
		return lineRange(0, 0, 0)
	}
	line := node.LineNumber() - 1
	printed := node.Indentation() + node.Line()
	switch e.Kind {
	case program.UnknownParser, program.BlankLine, program.ParserUsedMultipleTimes,
		program.LineAppearsMultipleTimes, program.MissingRequiredParser:
		return lineRange(line, len(node.Indentation()), len(printed))
	}
	_, start, end := node.Tree().WordSpan(e.CellIndex())
	start = min(start, len(printed))
	end = min(end, len(printed))
	return lineRange(line, start, end)
}

func lineRange(line, start, end int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(start)},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(end)},
	}
}

// Diagnostics converts the document's errors.
func Diagnostics(doc *program.Document) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	for _, e := range doc.AllErrors() {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    errorRange(e),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: e.Kind.String()},
			Source:   &source,
			Message:  e.Message(),
		})
	}
	return diagnostics
}

// CompletionItems lists the completions at a 0-based position.
func CompletionItems(doc *program.Document, line, char int) []protocol.CompletionItem {
	result := doc.AutocompleteAt(line, char)
	kind := protocol.CompletionItemKindValue
	if node := doc.NodeAtLine(line); node == nil || node.Tree().WordIndexAtChar(char) <= 0 {
		kind = protocol.CompletionItemKindKeyword
	}
	items := make([]protocol.CompletionItem, 0, len(result.Matches))
	for _, m := range result.Matches {
		detail := m.DisplayText
		insertText := m.Text
		items = append(items, protocol.CompletionItem{
			Label:      m.Text,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &insertText,
		})
	}
	return items
}

// HoverAt describes the definition of the line at a 0-based position and,
// over a cell, the cell's type.
func HoverAt(doc *program.Document, line, char int) *protocol.Hover {
	node := doc.NodeAtLine(line)
	if node == nil {
		return nil
	}
	def := node.Definition()

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n`%s`", def.ID, def.LineHints())
	if description := def.Description(); description != "" {
		fmt.Fprintf(&sb, "\n\n%s", description)
	}

	wordIndex := node.Tree().WordIndexAtChar(char)
	if cell, ok := node.Cell(wordIndex); ok && wordIndex >= 0 {
		fmt.Fprintf(&sb, "\n\n---\n\ncell %d: `%s`", cell.Index(), cell.TypeID())
		if ct := cell.Type(); ct != nil && ct.Description() != "" {
			fmt.Fprintf(&sb, " %s", ct.Description())
		}
	}

	_, start, end := node.Tree().WordSpan(max(wordIndex, 0))
	rng := lineRange(line, start, end)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: sb.String(),
		},
		Range: &rng,
	}
}

// wholeDocument replaces all of text.
func wholeDocument(text, newText string) protocol.TextEdit {
	lines := strings.Count(text, "\n")
	last := text[strings.LastIndex(text, "\n")+1:]
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: protocol.UInteger(lines), Character: protocol.UInteger(len(last))},
		},
		NewText: newText,
	}
}

// reparse parses a fresh copy of the file.
func (f *File) reparse() *program.Document {
	return f.Language.Parse(strings.TrimSuffix(f.Text, "\n"))
}

// withTrailer restores the final newline of the file's text.
func (f *File) withTrailer(text string) string {
	if strings.HasSuffix(f.Text, "\n") {
		return text + "\n"
	}
	return text
}

// FormatEdits formats a fresh copy of the file and returns the edit that
// applies it, or no edits when nothing moves.
func FormatEdits(f *File) []protocol.TextEdit {
	formatted := f.withTrailer(f.reparse().Format())
	if formatted == f.Text {
		return []protocol.TextEdit{}
	}
	return []protocol.TextEdit{wholeDocument(f.Text, formatted)}
}

// CodeActions offers a quick fix for every error with a suggestion whose
// line lies in rng. Each fix is applied to a fresh copy of the file.
func CodeActions(f *File, uri protocol.DocumentUri, rng protocol.Range) []protocol.CodeAction {
	actions := []protocol.CodeAction{}
	kind := protocol.CodeActionKindQuickFix
	errs := f.Document.AllErrors()
	for i, e := range errs {
		if e.Suggestion() == "" {
			continue
		}
		at := errorRange(e)
		if at.Start.Line < rng.Start.Line || at.Start.Line > rng.End.Line {
			continue
		}
		fixed := f.reparse()
		fixedErrs := fixed.AllErrors()
		if len(fixedErrs) != len(errs) {
			continue
		}
		fixedErrs[i].ApplySuggestion()

		severity := protocol.DiagnosticSeverityError
		actions = append(actions, protocol.CodeAction{
			Title: e.Suggestion(),
			Kind:  &kind,
			Diagnostics: []protocol.Diagnostic{{
				Range:    at,
				Severity: &severity,
				Message:  e.Message(),
			}},
			IsPreferred: boolPtr(true),
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					uri: {wholeDocument(f.Text, f.withTrailer(fixed.String()))},
				},
			},
		})
	}
	return actions
}
