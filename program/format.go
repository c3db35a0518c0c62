package program

import (
	"sort"
	"strings"

	"github.com/dhamidi/treelang/grammar"
	"github.com/dhamidi/treelang/tree"
)

// Format reorders children, recursively, into the order their parent's
// definition lists them in scope. Children of unlisted definitions keep
// their relative order after the listed ones.
func (n *Node) Format() {
	n.sortByScopeOrder()
	if n.IsRoot() {
		n.sortParserDefinitionsUpTop()
	}
	for _, child := range n.Children() {
		child.Format()
	}
}

func (n *Node) sortByScopeOrder() {
	def := n.Definition()
	if def.IsBlob() || def.IsUnknown() || n.tn.Len() < 2 {
		return
	}
	order := map[string]int{}
	for i, id := range def.InScopeIDs() {
		order[id] = i
	}
	if len(order) == 0 {
		return
	}
	rank := func(child *Node) int {
		ids := child.Definition().AncestorIDs()
		for i := len(ids) - 1; i >= 0; i-- {
			if r, ok := order[ids[i]]; ok {
				return r
			}
		}
		return len(order)
	}
	children := n.Children()
	ranks := make(map[*Node]int, len(children))
	for _, child := range children {
		ranks[child] = rank(child)
	}
	sort.SliceStable(children, func(i, j int) bool {
		return ranks[children[i]] < ranks[children[j]]
	})
	n.setChildren(children)
}

func (n *Node) setChildren(children []*Node) {
	tns := make([]*tree.Node, len(children))
	for i, child := range children {
		tns[i] = child.tn
	}
	n.tn.SetChildren(tns)
}

// sortParserDefinitionsUpTop applies to documents that are themselves
// grammars: top level parser definitions are moved, within the slots they
// already occupy, so that every definition follows the one it extends.
func (n *Node) sortParserDefinitionsUpTop() {
	children := n.Children()
	var slots []int
	for i, child := range children {
		if grammar.IsParserID(child.FirstWord()) {
			slots = append(slots, i)
		}
	}
	if len(slots) < 2 {
		return
	}
	g, err := grammar.Parse(n.tn.String())
	if err != nil {
		log.Debugf("not reordering definitions: %s", err)
		return
	}
	rank := map[string]int{}
	for i, tn := range g.FamilyTree().TopDown() {
		rank[tn.Line()] = i
	}
	defs := make([]*Node, len(slots))
	for i, slot := range slots {
		defs[i] = children[slot]
	}
	position := func(def *Node) int {
		if r, ok := rank[def.FirstWord()]; ok {
			return r
		}
		return len(rank)
	}
	sort.SliceStable(defs, func(i, j int) bool {
		return position(defs[i]) < position(defs[j])
	})
	for i, slot := range slots {
		children[slot] = defs[i]
	}
	n.setChildren(children)
}

// SortFromSortTemplate reorders children by the first word order of their
// parent's sort template, recursively. Double spaces in the template
// separate sections, and a blank line is placed between sections.
func (n *Node) SortFromSortTemplate() {
	for _, child := range n.Children() {
		child.SortFromSortTemplate()
	}
	template := n.Definition().SortTemplate()
	if template == "" {
		return
	}

	index := map[string]int{}
	for i, word := range strings.Split(template, tree.WordBreak) {
		if word != "" {
			index[word] = i
		}
	}
	section := map[string]int{}
	for i, part := range strings.Split(template, tree.WordBreak+tree.WordBreak) {
		for _, word := range strings.Fields(part) {
			section[word] = i
		}
	}
	position := func(child *Node) int {
		if i, ok := index[child.FirstWord()]; ok {
			return i
		}
		return unsortedPosition
	}

	var children []*Node
	for _, child := range n.Children() {
		if child.Line() == "" && child.tn.Len() == 0 {
			child.tn.Destroy()
			continue
		}
		if _, ok := index[child.FirstWord()]; !ok {
			log.Debugf("%q is not in the sort template of %s", child.FirstWord(), n.ParserID())
		}
		children = append(children, child)
	}
	sort.SliceStable(children, func(i, j int) bool {
		a, b := position(children[i]), position(children[j])
		if a != b {
			return a < b
		}
		return children[i].Line() < children[j].Line()
	})
	n.setChildren(children)

	last := -1
	for i, child := range children {
		s, ok := section[child.FirstWord()]
		if !ok {
			continue
		}
		if i > 0 && s != last {
			child.tn.PrependSibling("")
		}
		last = s
	}
}

const unsortedPosition = 1000
