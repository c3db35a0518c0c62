package grammar

import (
	"fmt"
	"regexp"
	"strings"
)

const defaultHighlightScope = "source"

// ToSublimeSyntax renders a Sublime Text syntax definition for the language.
func (g *Grammar) ToSublimeSyntax() string {
	var sb strings.Builder
	name := g.Name()
	fmt.Fprintf(&sb, "%%YAML 1.2\n---\nname: %s\nfile_extensions: [%s]\nscope: source.%s\n\n", name, strings.Join(g.Extensions(), ","), name)

	sb.WriteString("variables:\n")
	for _, ct := range g.CellTypes() {
		fmt.Fprintf(&sb, " %s: '%s'\n", ct.ID, ct.RegexString())
	}
	for _, id := range g.usedPreludeIDs() {
		fmt.Fprintf(&sb, " %s: '%s'\n", id, g.CellType(id).RegexString())
	}

	var defs []*ParserDef
	for _, def := range g.parsers {
		if !def.IsAbstract() {
			defs = append(defs, def)
		}
	}

	sb.WriteString("\ncontexts:\n main:\n")
	for _, def := range defs {
		fmt.Fprintf(&sb, "  - include: '%s'\n", def.ID)
	}
	for _, def := range defs {
		sb.WriteString("\n")
		sb.WriteString(def.sublimeMatchBlock())
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// usedPreludeIDs lists prelude types referenced without being declared.
func (g *Grammar) usedPreludeIDs() []string {
	var ids []string
	for _, def := range g.all {
		for _, id := range append(append([]string(nil), def.cells...), def.catchAllCell) {
			if ct := g.CellType(id); ct != nil && ct.implicit && !contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (d *ParserDef) sublimeMatchLine() string {
	if pattern := d.Pattern(); pattern != "" {
		return "'" + pattern + "'"
	}
	if crux := d.Crux(); crux != "" {
		return "'^ *" + regexp.QuoteMeta(crux) + "(?: |$)'"
	}
	if options := d.firstCellEnumOptions(); len(options) > 0 {
		quoted := make([]string, len(options))
		for i, o := range options {
			quoted[i] = regexp.QuoteMeta(o)
		}
		return "'^ *(" + strings.Join(quoted, "|") + ")(?: |$)'"
	}
	return "'^ *[^ ]*'"
}

func (d *ParserDef) sublimeMatchBlock() string {
	ids := append([]string(nil), d.cells...)
	scope := defaultHighlightScope
	if len(ids) > 0 {
		if s := d.g.CellType(ids[0]).HighlightScope(); s != "" {
			scope = s
		}
	}
	top := fmt.Sprintf(" '%s':\n  - match: %s\n    scope: %s.%s", d.ID, d.sublimeMatchLine(), scope, d.ID)
	if d.catchAllCell != "" {
		ids = append(ids, d.catchAllCell)
	}
	if len(ids) == 0 {
		return top
	}

	var captures, matchers []string
	for i, id := range ids {
		s := d.g.CellType(id).HighlightScope()
		if s == "" {
			s = defaultHighlightScope
		}
		captures = append(captures, fmt.Sprintf("        %d: %s.%s", i+1, s, id))
		matchers = append(matchers, "({{"+id+"}})?")
	}
	return fmt.Sprintf("%s\n    push:\n     - match: %s\n       captures:\n%s\n     - match: $\n       pop: true",
		top, strings.Join(matchers, " ?"), strings.Join(captures, "\n"))
}
