package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhamidi/treelang/tree"
)

const (
	inferEnumLimit  = 30
	inferChildLabel = "Child"
)

var (
	nonIDChar     = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	integerWord   = regexp.MustCompile(`^\d+$`)
	inferredFloat = regexp.MustCompile(`^-?\d*\.?\d+$`)
)

// MakeParserID turns an arbitrary word into a valid parser id.
func MakeParserID(word string) string {
	return strings.TrimSuffix(makeID(word), ParserSuffix) + ParserSuffix
}

// MakeCellTypeID turns an arbitrary word into a valid cell type id.
func MakeCellTypeID(word string) string {
	return strings.TrimSuffix(makeID(word), CellTypeSuffix) + CellTypeSuffix
}

func makeID(word string) string {
	id := nonIDChar.ReplaceAllStringFunc(word, func(s string) string {
		var sb strings.Builder
		for _, r := range s {
			sb.WriteString("_" + strconv.Itoa(int(r)))
		}
		return sb.String()
	})
	if id != "" && id[0] >= '0' && id[0] <= '9' {
		id = "n" + id
	}
	return id
}

// Infer proposes a grammar for a keyword language from sample text. Every
// distinct first word becomes a parser definition and each word position is
// typed by the narrowest prelude type that accepts all observed values.
func Infer(name, sample string) string {
	doc := tree.Parse(sample)
	for _, node := range doc.TopDown() {
		parent := node.Parent()
		if integerWord.MatchString(node.FirstWord()) && !parent.IsRoot() && parent.FirstWord() != "" {
			node.SetWord(0, MakeParserID(parent.FirstWord()+inferChildLabel))
		}
	}

	var order []string
	childWords := map[string][]string{}
	instances := map[string][]*tree.Node{}
	for _, node := range doc.TopDown() {
		word := node.FirstWord()
		if word == "" {
			continue
		}
		if _, ok := instances[word]; !ok {
			order = append(order, word)
		}
		instances[word] = append(instances[word], node)
		for _, child := range node.Children() {
			if w := child.FirstWord(); w != "" && !contains(childWords[word], w) {
				childWords[word] = append(childWords[word], w)
			}
		}
	}

	var cellTypeOrder []string
	cellTypeDefs := map[string]string{}
	addCellType := func(id, def string) {
		if _, ok := cellTypeDefs[id]; ok {
			return
		}
		cellTypeOrder = append(cellTypeOrder, id)
		cellTypeDefs[id] = def
	}
	addCellType(KeywordCell, "")

	var defs []string
	for _, word := range order {
		defs = append(defs, inferParserDef(word, childWords[word], instances[word], addCellType))
	}

	root := tree.New()
	rootDef := root.AppendLine(MakeParserID(name))
	rootDef.AppendLine(KeyRoot)
	var topIDs []string
	for _, word := range doc.FirstWords() {
		if word == "" {
			continue
		}
		if id := MakeParserID(word); !contains(topIDs, id) {
			topIDs = append(topIDs, id)
		}
	}
	if len(topIDs) > 0 {
		rootDef.AppendLine(KeyInScope + " " + strings.Join(topIDs, " "))
	}

	sections := []string{root.String()}
	for _, id := range cellTypeOrder {
		if def := cellTypeDefs[id]; def != "" {
			sections = append(sections, def)
		} else {
			sections = append(sections, id)
		}
	}
	sections = append(sections, defs...)
	return strings.Join(sections, tree.NodeBreak)
}

func inferParserDef(word string, children []string, instances []*tree.Node, addCellType func(id, def string)) string {
	root := tree.New()
	def := root.AppendLine(MakeParserID(word))
	if len(children) > 0 {
		ids := make([]string, len(children))
		for i, child := range children {
			ids[i] = MakeParserID(child)
		}
		def.AppendLine(KeyInScope + " " + strings.Join(ids, " "))
	}

	var rows [][]string
	for _, node := range instances {
		if content, ok := node.Content(); ok && content != "" {
			rows = append(rows, strings.Split(content, tree.WordBreak))
		}
	}
	minCells, maxCells := 0, 0
	for i, row := range rows {
		if i == 0 || len(row) < minCells {
			minCells = len(row)
		}
		if len(row) > maxCells {
			maxCells = len(row)
		}
	}

	var cellIDs []string
	for i := 0; i < maxCells; i++ {
		column := make([]string, len(rows))
		for j, row := range rows {
			if i < len(row) {
				column[j] = row[i]
			}
		}
		id, source := bestCellType(word, len(instances), maxCells, column)
		addCellType(id, source)
		cellIDs = append(cellIDs, id)
	}

	catchAll := ""
	if maxCells > minCells {
		catchAll = cellIDs[len(cellIDs)-1]
		cellIDs = cellIDs[:len(cellIDs)-1]
		for len(cellIDs) > 0 && cellIDs[len(cellIDs)-1] == catchAll {
			cellIDs = cellIDs[:len(cellIDs)-1]
		}
	}

	if !strings.HasSuffix(word, inferChildLabel+ParserSuffix) {
		def.AppendLine(KeyCrux + " " + word)
	}
	if catchAll != "" {
		def.AppendLine(KeyCatchAllCellType + " " + catchAll)
	}
	def.AppendLine(KeyCells + " " + strings.Join(append([]string{KeywordCell}, cellIDs...), " "))
	return root.String()
}

func bestCellType(word string, instanceCount, maxCells int, column []string) (id, source string) {
	var values []string
	for _, v := range column {
		if v != "" && !contains(values, v) {
			values = append(values, v)
		}
	}
	every := func(fn func(string) bool) bool {
		for _, v := range values {
			if !fn(v) {
				return false
			}
		}
		return true
	}
	switch {
	case every(func(s string) bool { return s == "0" || s == "1" }):
		return BitCell, ""
	case every(KindInt.valid):
		return IntCell, ""
	case every(inferredFloat.MatchString):
		return FloatCell, ""
	case every(func(s string) bool { _, ok := boolWords[strings.ToLower(s)]; return ok }):
		return BoolCell, ""
	}
	distinct := map[string]bool{}
	for _, v := range column {
		distinct[v] = true
	}
	if instanceCount > 1 && maxCells == 1 && len(column) > len(distinct) && len(distinct) < inferEnumLimit {
		id := MakeCellTypeID(word)
		return id, fmt.Sprintf("%s\n %s %s", id, KeyEnum, strings.Join(values, " "))
	}
	return AnyCell, ""
}

func contains(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}
