package grammar

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the built-in value semantics a cell type inherits from the prelude
// type at the end of its extends chain.
type Kind int

const (
	KindAny Kind = iota
	KindKeyword
	KindExtraWord
	KindFloat
	KindBit
	KindBool
	KindInt
)

var preludeKinds = map[string]Kind{
	AnyCell:       KindAny,
	KeywordCell:   KindKeyword,
	ExtraWordCell: KindExtraWord,
	FloatCell:     KindFloat,
	NumberCell:    KindFloat,
	BitCell:       KindBit,
	BoolCell:      KindBool,
	IntCell:       KindInt,
}

// IsPrelude reports whether id is one of the built-in cell type ids.
func IsPrelude(id string) bool {
	_, ok := preludeKinds[id]
	return ok
}

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindExtraWord:
		return "extraWord"
	case KindFloat:
		return "float"
	case KindBit:
		return "bit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	}
	return "any"
}

var floatPattern = regexp.MustCompile(`^-?\d*(\.\d+)?$`)

var boolWords = map[string]bool{
	"1": true, "true": true, "t": true, "yes": true,
	"0": false, "false": false, "f": false, "no": false,
}

func (k Kind) valid(word string) bool {
	switch k {
	case KindExtraWord:
		return false
	case KindInt:
		n, err := strconv.Atoi(word)
		return err == nil && strconv.Itoa(n) == word
	case KindFloat:
		if !floatPattern.MatchString(word) {
			return false
		}
		_, err := strconv.ParseFloat(word, 64)
		return err == nil
	case KindBit:
		return word == "0" || word == "1"
	case KindBool:
		_, ok := boolWords[strings.ToLower(word)]
		return ok
	}
	return true
}

// Parse converts a word into the Go value for this kind: int, float64 or
// bool. Everything else stays a string.
func (k Kind) Parse(word string) any {
	switch k {
	case KindInt:
		if n, err := strconv.Atoi(word); err == nil {
			return n
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return f
		}
	case KindBit:
		return word == "1"
	case KindBool:
		if b, ok := boolWords[strings.ToLower(word)]; ok {
			return b
		}
	}
	return word
}

func (k Kind) highlightScope() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindInt:
		return "constant.numeric.integer"
	case KindFloat:
		return "constant.numeric.float"
	case KindBit, KindBool:
		return "constant.numeric"
	}
	return ""
}

func (k Kind) synthesize(rng *rand.Rand, min, max float64) string {
	switch k {
	case KindInt:
		lo, hi := int(min), int(max)
		if hi < lo {
			lo, hi = hi, lo
		}
		return strconv.Itoa(lo + rng.IntN(hi-lo+1))
	case KindFloat:
		v := min + rng.Float64()*(max-min)
		return strconv.FormatFloat(v, 'f', 3, 64)
	case KindBit:
		return strconv.Itoa(rng.IntN(2))
	case KindBool:
		options := []string{"1", "true", "t", "yes", "0", "false", "f", "no"}
		return options[rng.IntN(len(options))]
	}
	return ""
}
