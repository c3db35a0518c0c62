package program

// ExampleResult is the outcome of parsing one example from the grammar.
type ExampleResult struct {
	ParserID string
	Label    string
	Line     int
	Errors   []*Error
}

func (r ExampleResult) OK() bool {
	return len(r.Errors) == 0
}

// CheckExamples parses every example block declared in the grammar as a
// document of its own and reports the errors found. Inherited examples are
// checked once.
func (l *Language) CheckExamples() []ExampleResult {
	var results []ExampleResult
	seen := map[int]bool{}
	for _, def := range l.g.AllParsers() {
		if def.IsBuiltin() {
			continue
		}
		for _, ex := range def.Examples() {
			if seen[ex.Line] {
				continue
			}
			seen[ex.Line] = true
			doc := l.Parse(ex.Content)
			errs := doc.AllErrors()
			if len(errs) > 0 {
				log.Infof("example %q of %s has %d errors", ex.Label, def.ID, len(errs))
			}
			results = append(results, ExampleResult{
				ParserID: def.ID,
				Label:    ex.Label,
				Line:     ex.Line,
				Errors:   errs,
			})
		}
	}
	return results
}
