package grammar

// CellParsing selects how the words of a line are assigned to cell types.
type CellParsing int

const (
	Prefix CellParsing = iota
	Postfix
	Omnifix
)

func (p CellParsing) String() string {
	switch p {
	case Postfix:
		return "postfix"
	case Omnifix:
		return "omnifix"
	}
	return "prefix"
}

func parseCellParsing(word string) (CellParsing, bool) {
	switch word {
	case "", "prefix":
		return Prefix, true
	case "postfix":
		return Postfix, true
	case "omnifix":
		return Omnifix, true
	}
	return Prefix, false
}

// CellSlot is the type assignment of one word position. Type is nil when
// no type accepts the word.
type CellSlot struct {
	Index    int
	TypeID   string
	Type     *CellType
	CatchAll bool
}

// CellParser assigns the words of a line to cell slots. Prefix and postfix
// produce max(len(words), len(required)) slots. Omnifix produces one slot per
// word plus one for each required type no word took.
type CellParser interface {
	Strategy() CellParsing
	Assign(words []string, src EnumSource) []CellSlot
}

type cellParser struct {
	g        *Grammar
	strategy CellParsing
	required []string
	catchAll string
}

func newCellParser(g *Grammar, strategy CellParsing, required []string, catchAll string) CellParser {
	return &cellParser{g: g, strategy: strategy, required: required, catchAll: catchAll}
}

func (p *cellParser) Strategy() CellParsing {
	return p.strategy
}

func (p *cellParser) slot(index int, typeID string, catchAll bool) CellSlot {
	if typeID == "" {
		typeID = ExtraWordCell
	}
	return CellSlot{Index: index, TypeID: typeID, Type: p.g.CellType(typeID), CatchAll: catchAll}
}

func (p *cellParser) Assign(words []string, src EnumSource) []CellSlot {
	switch p.strategy {
	case Postfix:
		return p.postfix(len(words))
	case Omnifix:
		return p.omnifix(words, src)
	}
	return p.prefix(len(words))
}

func (p *cellParser) prefix(wordCount int) []CellSlot {
	n := max(wordCount, len(p.required))
	slots := make([]CellSlot, 0, n)
	for i := 0; i < n; i++ {
		if i < len(p.required) {
			slots = append(slots, p.slot(i, p.required[i], false))
		} else {
			slots = append(slots, p.slot(i, p.catchAll, true))
		}
	}
	return slots
}

func (p *cellParser) postfix(wordCount int) []CellSlot {
	n := max(wordCount, len(p.required))
	leading := max(wordCount-len(p.required), 0)
	slots := make([]CellSlot, 0, n)
	for i := 0; i < n; i++ {
		if i < leading {
			slots = append(slots, p.slot(i, p.catchAll, true))
		} else {
			slots = append(slots, p.slot(i, p.required[i-leading], false))
		}
	}
	return slots
}

// omnifix gives each word the first still-unconsumed required type that
// accepts it, then the catch-all type, and otherwise no type. Required types
// left over are appended as cells without a word.
func (p *cellParser) omnifix(words []string, src EnumSource) []CellSlot {
	remaining := append([]string(nil), p.required...)
	slots := make([]CellSlot, 0, len(words)+len(p.required))
	var catchAllType *CellType
	if p.catchAll != "" {
		catchAllType = p.g.CellType(p.catchAll)
	}

	for i, word := range words {
		matched := -1
		for j, id := range remaining {
			if ct := p.g.CellType(id); ct != nil && ct.IsValid(word, src) {
				matched = j
				break
			}
		}
		switch {
		case matched >= 0:
			slots = append(slots, p.slot(i, remaining[matched], false))
			remaining = append(remaining[:matched], remaining[matched+1:]...)
		case catchAllType != nil && catchAllType.IsValid(word, src):
			slots = append(slots, p.slot(i, p.catchAll, true))
		default:
			slots = append(slots, CellSlot{Index: i})
		}
	}

	for _, id := range remaining {
		slots = append(slots, p.slot(len(slots), id, false))
	}
	return slots
}
