package program

import (
	"strings"

	"github.com/dhamidi/treelang/tree"
)

// TypedMap projects the node's children into plain values keyed by first
// word. Children that may repeat collect into lists.
func (n *Node) TypedMap() map[string]any {
	m := map[string]any{}
	for _, child := range n.Children() {
		def := child.Definition()
		if !def.ShouldSerialize() {
			continue
		}
		key, value := child.TypedTuple()
		if !def.UniqueFirstWord() && !def.IsSingle() {
			list, _ := m[key].([]any)
			m[key] = append(list, value)
			continue
		}
		m[key] = value
	}
	return m
}

// TypedTuple is the node's first word with its projected value.
func (n *Node) TypedTuple() (string, any) {
	def := n.Definition()
	key := n.FirstWord()
	if def.IsBlob() {
		return key, n.tn.String()
	}

	contentKey, hasContentKey := def.ContentKey()
	childrenKey, hasChildrenKey := def.ChildrenKey()
	if hasContentKey || hasChildrenKey {
		var obj map[string]any
		if hasChildrenKey {
			obj = map[string]any{childrenKey: n.tn.String()}
		} else {
			obj = n.TypedMap()
		}
		if hasContentKey {
			obj[contentKey] = n.TypedContent()
		}
		return key, obj
	}

	hasChildren := n.tn.Len() > 0
	content, hasContent := n.tn.Content()
	switch {
	case hasChildren && !hasContent:
		return key, n.TypedMap()
	case hasChildren:
		return key, content + tree.NodeBreak + n.tn.String()
	}
	return key, n.TypedContent()
}

// TypedContent is the node's content as a value: a list when the
// definition declares a list delimiter, the parsed second cell when the line
// has exactly two cells, and the raw content otherwise.
func (n *Node) TypedContent() any {
	content, ok := n.tn.Content()
	if delimiter, isList := n.Definition().ListDelimiter(); isList && ok {
		return strings.Split(content, delimiter)
	}
	if cells := n.ParsedCells(); len(cells) == 2 {
		return cells[1].Parsed()
	}
	if !ok {
		return nil
	}
	return content
}
