package grammar

import (
	"math/rand/v2"
	"strings"

	"github.com/dhamidi/treelang/tree"
)

// NewRand returns the random source used for synthesis. Equal seeds give
// equal programs.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Synthesize generates a random document that exercises every reachable
// definition once per pass. passes repeats the walk below the root.
func (g *Grammar) Synthesize(passes int, seed uint64) string {
	rng := NewRand(seed)
	if passes < 1 {
		passes = 1
	}
	var lines []string
	for i := 0; i < passes; i++ {
		done := map[string]bool{}
		lines = g.root.synthesizeChildren(rng, 0, done, lines)
	}
	return strings.Join(lines, tree.NodeBreak)
}

// SynthesizeLine produces a single line for the definition: its crux, if
// any, followed by a generated word for every required cell.
func (d *ParserDef) SynthesizeLine(rng *rand.Rand) string {
	slots := d.cellParser.Assign(nil, nil)
	words := make([]string, len(slots))
	crux := d.Crux()
	for i, slot := range slots {
		if i == 0 && crux != "" {
			words[i] = crux
			continue
		}
		if slot.Type == nil {
			continue
		}
		words[i] = slot.Type.Synthesize(rng, d)
	}
	if len(words) == 0 && crux != "" {
		return crux
	}
	return strings.Join(words, tree.WordBreak)
}

func (d *ParserDef) synthesizable(done map[string]bool) bool {
	return !d.IsErrorParser() && !d.IsAbstract() && !done[d.ID] && !d.HasTag(TagDoNotSynthesize)
}

func (d *ParserDef) synthesizeChildren(rng *rand.Rand, indent int, done map[string]bool, lines []string) []string {
	children := d.ConcreteInScope()
	if d.catchAll != nil && !d.catchAll.IsAbstract() {
		children = append(children, d.catchAll)
	}
	for _, child := range children {
		if !child.synthesizable(done) {
			continue
		}
		done[child.ID] = true
		line := child.SynthesizeLine(rng)
		if line == "" {
			continue
		}
		lines = append(lines, strings.Repeat(tree.Edge, indent)+line)
		lines = child.synthesizeChildren(rng, indent+1, done, lines)
	}
	return lines
}
