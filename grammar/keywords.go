package grammar

import "regexp"

// Keys recognised on parser definitions and cell type definitions.
const (
	KeyExtends          = "extends"
	KeyRoot             = "root"
	KeyCrux             = "crux"
	KeyCruxFromID       = "cruxFromId"
	KeyPattern          = "pattern"
	KeyInScope          = "inScope"
	KeyCells            = "cells"
	KeyCatchAllCellType = "catchAllCellType"
	KeyCellParser       = "cellParser"
	KeyCatchAllParser   = "catchAllParser"
	KeyBaseParser       = "baseParser"
	KeyRequired         = "required"
	KeySingle           = "single"
	KeyUniqueLine       = "uniqueLine"
	KeyTags             = "tags"
	KeyDescription      = "description"
	KeyExample          = "example"
	KeyCompiler         = "compiler"
	KeyCompilesTo       = "compilesTo"
	KeyListDelimiter    = "listDelimiter"
	KeyContentKey       = "contentKey"
	KeyChildrenKey      = "childrenKey"
	KeyUniqueFirstWord  = "uniqueFirstWord"
	KeyFrequency        = "frequency"
	KeySortTemplate     = "sortTemplate"
	KeyExtensions       = "extensions"
	KeyVersion          = "version"
	KeyJavascript       = "javascript"

	KeyRegex             = "regex"
	KeyReservedWords     = "reservedWords"
	KeyEnumFromCellTypes = "enumFromCellTypes"
	KeyEnum              = "enum"
	KeyExamples          = "examples"
	KeyMin               = "min"
	KeyMax               = "max"
	KeyHighlightScope    = "highlightScope"

	Comment = "//"
)

// Compiler directive keys, found below a "compiler" line.
const (
	StringTemplate        = "stringTemplate"
	IndentCharacter       = "indentCharacter"
	CatchAllCellDelimiter = "catchAllCellDelimiter"
	OpenChildren          = "openChildren"
	JoinChildrenWith      = "joinChildrenWith"
	CloseChildren         = "closeChildren"
)

// Constant types. A constant line reads "<type> <name> <value...>".
const (
	ConstantBoolean = "boolean"
	ConstantString  = "string"
	ConstantInt     = "int"
	ConstantFloat   = "float"
)

const (
	BlobParserBase  = "blobParser"
	ErrorParserBase = "errorParser"

	BlobParserID        = "BlobParser"
	DefaultRootParserID = "DefaultRootParser"
	UnknownParserID     = "UnknownParser"

	AbstractPrefix = "abstract"
	ParserSuffix   = "Parser"
	CellTypeSuffix = "Cell"

	TagDoNotSynthesize = "doNotSynthesize"
)

// Constants with a meaning to the runtime.
const (
	ConstSuggestInAutocomplete = "suggestInAutocomplete"
	ConstShouldSerialize       = "shouldSerialize"
)

// Prelude cell type ids. A grammar may reference them without declaring
// them.
const (
	AnyCell       = "anyCell"
	KeywordCell   = "keywordCell"
	ExtraWordCell = "extraWordCell"
	FloatCell     = "floatCell"
	NumberCell    = "numberCell"
	BitCell       = "bitCell"
	BoolCell      = "boolCell"
	IntCell       = "intCell"
)

var (
	parserIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_]+` + ParserSuffix + `$`)
	cellTypeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+` + CellTypeSuffix + `$`)
)

// IsParserID reports whether word names a parser definition.
func IsParserID(word string) bool {
	return parserIDPattern.MatchString(word)
}

// IsCellTypeID reports whether word names a cell type definition.
func IsCellTypeID(word string) bool {
	return cellTypeIDPattern.MatchString(word)
}

var parserKeys = map[string]bool{
	KeyExtends: true, KeyRoot: true, KeyCrux: true, KeyCruxFromID: true,
	KeyPattern: true, KeyInScope: true, KeyCells: true, KeyCatchAllCellType: true,
	KeyCellParser: true, KeyCatchAllParser: true, KeyBaseParser: true,
	KeyRequired: true, KeySingle: true, KeyUniqueLine: true, KeyTags: true,
	KeyDescription: true, KeyCompilesTo: true, KeyListDelimiter: true,
	KeyContentKey: true, KeyChildrenKey: true, KeyUniqueFirstWord: true,
	KeyFrequency: true, KeySortTemplate: true, KeyExtensions: true, KeyVersion: true,
}

var cellTypeKeys = map[string]bool{
	KeyExtends: true, KeyRegex: true, KeyReservedWords: true,
	KeyEnumFromCellTypes: true, KeyEnum: true, KeyExamples: true,
	KeyMin: true, KeyMax: true, KeyHighlightScope: true, KeyDescription: true,
}

var compilerKeys = map[string]bool{
	StringTemplate: true, IndentCharacter: true, CatchAllCellDelimiter: true,
	OpenChildren: true, JoinChildrenWith: true, CloseChildren: true,
}
