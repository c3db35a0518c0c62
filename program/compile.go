package program

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhamidi/treelang/tree"
)

var templateField = regexp.MustCompile(`\{([^}]+)\}`)

// Compile renders the node and its subtree through the compiler settings of
// their definitions. The root compiles to its children joined by newlines.
func (n *Node) Compile() string {
	if n.IsRoot() {
		return n.compileChildren(tree.NodeBreak)
	}
	def := n.Definition()
	c := def.Compiler()
	indent := strings.Repeat(c.IndentCharacter, len(n.tn.Indentation()))
	line := indent + n.compiledLine()
	if def.IsTerminal() {
		return line
	}

	var sb strings.Builder
	sb.WriteString(line)
	sb.WriteString(c.OpenChildren)
	if n.tn.Len() > 0 {
		sb.WriteString(tree.NodeBreak)
		sb.WriteString(n.compileChildren(c.JoinChildrenWith))
	}
	if c.CloseChildren != "" {
		sb.WriteString(tree.NodeBreak)
		sb.WriteString(indent)
		sb.WriteString(c.CloseChildren)
	}
	return sb.String()
}

func (n *Node) compileChildren(join string) string {
	children := n.Children()
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = child.Compile()
	}
	return strings.Join(parts, join)
}

func (n *Node) compiledLine() string {
	c := n.Definition().Compiler()
	if !c.HasStringTemplate {
		return n.tn.Line()
	}
	fields := n.templateFields()
	return templateField.ReplaceAllStringFunc(c.StringTemplate, func(match string) string {
		value, ok := fields[match[1:len(match)-1]]
		if !ok {
			return ""
		}
		if list, ok := value.([]any); ok {
			parts := make([]string, len(list))
			for i, v := range list {
				parts[i] = formatValue(v)
			}
			return strings.Join(parts, c.CatchAllCellDelimiter)
		}
		return formatValue(value)
	})
}

// templateFields maps the content of required and single children by first
// word, then every cell by type id. Catch-all cells collect into a list.
func (n *Node) templateFields() map[string]any {
	fields := map[string]any{}
	for _, child := range n.Children() {
		def := child.Definition()
		if def.IsRequired() || def.IsSingle() {
			content, _ := child.tn.Content()
			fields[child.FirstWord()] = content
		}
	}
	for _, cell := range n.ParsedCells() {
		if !cell.HasWord() {
			continue
		}
		if cell.IsCatchAll() {
			list, _ := fields[cell.TypeID()].([]any)
			fields[cell.TypeID()] = append(list, cell.Parsed())
			continue
		}
		fields[cell.TypeID()] = cell.Parsed()
	}
	return fields
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
