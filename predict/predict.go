// Package predict learns which definitions appear below which from a corpus
// of documents and uses the counts to suggest likely children and parents.
package predict

import (
	"sort"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/treelang/program"
)

var log = commonlog.GetLogger("treelang.predict")

// Prediction is a definition with how often it was seen in the queried
// position.
type Prediction struct {
	ID          string  `json:"id"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
}

// Model is a parent to child frequency matrix. Row and column 0 stand for
// a document root; every other index is a definition.
type Model struct {
	ids    []string
	index  map[string]int
	matrix [][]int
}

// Train parses every document with lang and counts, for each node, the pair
// of its parent's definition and its own.
func Train(lang *program.Language, documents []string) *Model {
	m := &Model{ids: []string{""}, index: map[string]int{}}
	for _, def := range lang.Grammar().AllParsers() {
		if def.IsBuiltin() {
			continue
		}
		if _, ok := m.index[def.ID]; ok {
			continue
		}
		m.index[def.ID] = len(m.ids)
		m.ids = append(m.ids, def.ID)
	}
	m.matrix = make([][]int, len(m.ids))
	for i := range m.matrix {
		m.matrix[i] = make([]int, len(m.ids))
	}

	for _, text := range documents {
		doc := lang.Parse(text)
		for _, node := range doc.TopDown() {
			child, ok := m.index[node.ParserID()]
			if !ok {
				continue
			}
			parent, ok := m.row(node.Parent())
			if !ok {
				continue
			}
			m.matrix[parent][child]++
		}
	}
	log.Infof("trained on %d documents over %d definitions", len(documents), len(m.ids)-1)
	return m
}

func (m *Model) row(node *program.Node) (int, bool) {
	if node.IsRoot() {
		return 0, true
	}
	i, ok := m.index[node.ParserID()]
	return i, ok
}

// Count is how often child was seen directly below parent. An empty parent
// id stands for the document root.
func (m *Model) Count(parent, child string) int {
	p, ok := m.index[parent]
	if parent == "" {
		p, ok = 0, true
	}
	c, cok := m.index[child]
	if !ok || !cok {
		return 0
	}
	return m.matrix[p][c]
}

// PredictChildren ranks the definitions seen below nodes like node, most
// frequent first.
func (m *Model) PredictChildren(node *program.Node) []Prediction {
	row, ok := m.row(node)
	if !ok {
		return nil
	}
	return m.rank(m.matrix[row])
}

// PredictParents ranks the definitions seen directly above nodes like node.
// The document root is reported with an empty id.
func (m *Model) PredictParents(node *program.Node) []Prediction {
	if node.IsRoot() {
		return nil
	}
	col, ok := m.index[node.ParserID()]
	if !ok {
		return nil
	}
	counts := make([]int, len(m.ids))
	for i, row := range m.matrix {
		counts[i] = row[col]
	}
	return m.rank(counts)
}

func (m *Model) rank(counts []int) []Prediction {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}
	var predictions []Prediction
	for i, c := range counts {
		if c == 0 {
			continue
		}
		predictions = append(predictions, Prediction{
			ID:          m.ids[i],
			Count:       c,
			Probability: float64(c) / float64(total),
		})
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Count > predictions[j].Count
	})
	return predictions
}
