package program

import "strings"

// Completion is one suggestion. Text is inserted, DisplayText is shown.
type Completion struct {
	Text        string `json:"text"`
	DisplayText string `json:"displayText"`
}

// AutocompleteResult holds the word under the cursor, its span in the line
// and the suggestions for it.
type AutocompleteResult struct {
	StartChar int          `json:"startCharIndex"`
	EndChar   int          `json:"endCharIndex"`
	Word      string       `json:"word"`
	Matches   []Completion `json:"matches"`
}

// AutocompleteAt suggests words for the cursor at the 0-based line and
// character. Lines past the end of the document complete top level words.
func (d *Document) AutocompleteAt(lineIndex, charIndex int) AutocompleteResult {
	line := d.NodeAtLine(lineIndex)
	if line == nil {
		line = d.Root()
	}
	wordIndex := line.tn.WordIndexAtChar(charIndex)
	word, start, end := line.tn.WordSpan(wordIndex)
	scope := line.nodeInScope(wordIndex)
	return AutocompleteResult{
		StartChar: start,
		EndChar:   end,
		Word:      word,
		Matches:   scope.autocomplete(line, word, wordIndex),
	}
}

// nodeInScope is the node whose definition decides what fits at wordIndex:
// the line itself for cells, its parent for the first word and further
// ancestors inside the indentation.
func (n *Node) nodeInScope(wordIndex int) *Node {
	if n.IsRoot() || wordIndex > 0 {
		return n
	}
	node := n
	for ; wordIndex < 1 && node.Parent() != nil; wordIndex++ {
		node = node.Parent()
	}
	return node
}

func (n *Node) autocomplete(line *Node, word string, wordIndex int) []Completion {
	switch {
	case wordIndex == 0:
		return n.firstWordCompletions(word)
	case wordIndex > 0:
		cell, ok := line.Cell(wordIndex)
		if !ok {
			return nil
		}
		var matches []Completion
		for _, w := range cell.AutocompleteWords(word) {
			matches = append(matches, Completion{Text: w, DisplayText: w})
		}
		return matches
	}
	return nil
}

func (n *Node) firstWordCompletions(prefix string) []Completion {
	def := n.Definition()
	var matches []Completion
	for _, w := range def.FirstWords() {
		if !strings.HasPrefix(w, prefix) {
			continue
		}
		child := def.FirstWordDef(w)
		if !child.SuggestInAutocomplete() {
			continue
		}
		display := w
		if description := child.Description(); description != "" {
			display += " " + description
		}
		matches = append(matches, Completion{Text: w, DisplayText: display})
	}
	return matches
}

// AutocompleteRow is the completion at one word boundary of the document.
type AutocompleteRow struct {
	Line        int      `json:"line"`
	Char        int      `json:"char"`
	WordIndex   int      `json:"wordIndex"`
	Word        string   `json:"word"`
	Suggestions []string `json:"suggestions"`
}

// AutocompleteTable completes at the start of every word of every line.
func (d *Document) AutocompleteTable() []AutocompleteRow {
	var rows []AutocompleteRow
	for lineIndex, node := range d.TopDown() {
		for wordIndex := range node.tn.WordCount() {
			_, start, _ := node.tn.WordSpan(wordIndex)
			result := d.AutocompleteAt(lineIndex, start)
			suggestions := make([]string, len(result.Matches))
			for i, m := range result.Matches {
				suggestions[i] = m.Text
			}
			rows = append(rows, AutocompleteRow{
				Line:        lineIndex,
				Char:        start,
				WordIndex:   wordIndex,
				Word:        result.Word,
				Suggestions: suggestions,
			})
		}
	}
	return rows
}
