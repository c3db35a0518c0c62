package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/ebnf"
)

const (
	ebnfWord = "word"
	ebnfChar = "char"
)

// EBNF renders the line structure of the language as an EBNF grammar in
// the notation of golang.org/x/exp/ebnf. Only productions reachable from the
// root are emitted; the start production is returned alongside.
func (g *Grammar) EBNF() (text, start string) {
	var sb strings.Builder
	start = productionName(g.root.ID)

	emitted := map[string]bool{}
	usesWord := false
	var cellTypes []string
	queue := []*ParserDef{g.root}
	for len(queue) > 0 {
		def := queue[0]
		queue = queue[1:]
		name := productionName(def.ID)
		if emitted[name] {
			continue
		}
		emitted[name] = true

		var terms []string
		if def != g.root {
			head, types := def.ebnfHead()
			terms = append(terms, head...)
			for _, id := range types {
				if !contains(cellTypes, id) {
					cellTypes = append(cellTypes, id)
				}
			}
		}
		children := def.ConcreteInScope()
		if def.catchAll != nil {
			children = append(children, def.catchAll)
		}
		if def.IsBlob() {
			terms = append(terms, "{ "+ebnfWord+" }")
		}
		if len(children) > 0 {
			alternatives := make([]string, 0, len(children))
			for _, child := range children {
				alternatives = append(alternatives, productionName(child.ID))
				queue = append(queue, child)
			}
			terms = append(terms, "{ "+strings.Join(alternatives, " | ")+" }")
		}
		if len(terms) == 0 {
			terms = append(terms, strconv.Quote(def.ID))
		}
		for _, term := range terms {
			usesWord = usesWord || term == ebnfWord || term == "{ "+ebnfWord+" }"
		}
		fmt.Fprintf(&sb, "%s = %s .\n", name, strings.Join(terms, " "))
	}

	for _, id := range cellTypes {
		ct := g.CellType(id)
		body := ebnfWord
		if options := ct.enum; len(options) > 0 {
			quoted := make([]string, len(options))
			for i, o := range options {
				quoted[i] = strconv.Quote(o)
			}
			body = strings.Join(quoted, " | ")
		} else {
			usesWord = true
		}
		fmt.Fprintf(&sb, "%s = %s .\n", productionName(id), body)
	}

	if usesWord {
		fmt.Fprintf(&sb, "%s = %s { %s } .\n", ebnfWord, ebnfChar, ebnfChar)
		fmt.Fprintf(&sb, "%s = \"a\" … \"z\" | \"A\" … \"Z\" | \"0\" … \"9\" | \"_\" | \"-\" | \".\" .\n", ebnfChar)
	}
	return sb.String(), start
}

// VerifyEBNF renders the grammar as EBNF and checks it with
// golang.org/x/exp/ebnf.
func (g *Grammar) VerifyEBNF() error {
	text, start := g.EBNF()
	parsed, err := ebnf.Parse(g.Name()+".ebnf", strings.NewReader(text))
	if err != nil {
		return err
	}
	return ebnf.Verify(parsed, start)
}

func (d *ParserDef) ebnfHead() (terms, cellTypes []string) {
	slots := d.cellParser.Assign(nil, nil)
	crux := d.Crux()
	switch {
	case crux != "":
		terms = append(terms, strconv.Quote(crux))
	case d.pattern != nil || len(slots) == 0:
		terms = append(terms, ebnfWord)
	}
	for i, slot := range slots {
		if i == 0 && crux != "" {
			continue
		}
		terms = append(terms, productionName(slot.TypeID))
		cellTypes = append(cellTypes, slot.TypeID)
	}
	if d.catchAllCell != "" {
		terms = append(terms, "{ "+productionName(d.catchAllCell)+" }")
		cellTypes = append(cellTypes, d.catchAllCell)
	}
	return terms, cellTypes
}

// productionName capitalizes id so the production is not lexical.
func productionName(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}
