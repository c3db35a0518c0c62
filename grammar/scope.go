package grammar

// scope is the ordered set of parser definitions visible from one place in
// the grammar. A nested definition shadows an outer one with the same id but
// keeps the outer one's position.
type scope struct {
	defs []*ParserDef
	byID map[string]*ParserDef
}

func newScope(defs []*ParserDef) *scope {
	s := &scope{byID: map[string]*ParserDef{}}
	return s.with(defs)
}

func (s *scope) with(defs []*ParserDef) *scope {
	next := &scope{
		defs: append([]*ParserDef(nil), s.defs...),
		byID: make(map[string]*ParserDef, len(s.byID)+len(defs)),
	}
	for id, def := range s.byID {
		next.byID[id] = def
	}
	for _, def := range defs {
		if old, ok := next.byID[def.ID]; ok {
			for i, d := range next.defs {
				if d == old {
					next.defs[i] = def
				}
			}
		} else {
			next.defs = append(next.defs, def)
		}
		next.byID[def.ID] = def
	}
	return next
}

func (s *scope) lookup(id string) *ParserDef {
	if s == nil {
		return nil
	}
	return s.byID[id]
}
