package schema

import "github.com/alecthomas/participle/v2/lexer"

// The AST mirrors the grammar in the policy-type DSL one to one:
//
//	type_decl   := "type" qualified_name "{" field (","|";" field)* ","? "}"
//	field       := ident ":" field_type ("@" strategy)? ("=" literal)?
//	field_type  := "bool" | "number" | "string"
//	             | "[" string_literal ("," string_literal)* "]"  -- enum
//	             | "[" scalar_type "]"                            -- array
//	strategy    := "agreement" | ("highest" "wins") | "default"

type typeDeclAST struct {
	Pos    lexer.Position `parser:""`
	Name   []string       `parser:"'type' @Ident ('.' @Ident)*"`
	Fields []*fieldAST    `parser:"'{' @@ ((',' | ';') @@)* (',' | ';')? '}'"`
}

type fieldAST struct {
	Pos        lexer.Position `parser:""`
	Name       string         `parser:"@Ident ':'"`
	Type       *fieldTypeAST  `parser:"@@"`
	Strategy   *string        `parser:"('@' @('agreement' | 'highest' 'wins' | 'default'))?"`
	Default    *literalAST    `parser:"('=' @@)?"`
}

// fieldTypeAST distinguishes the five spellings of field_type. Enum and
// array both open with "[", so resolving which branch applies requires
// unbounded lookahead.
type fieldTypeAST struct {
	Pos    lexer.Position `parser:""`
	Scalar *string        `parser:"  @('bool' | 'number' | 'string')"`
	Enum   []string       `parser:"| '[' @String (',' @String)* ']'"`
	Array  *string        `parser:"| '[' @('string' | 'number') ']'"`
}

type literalAST struct {
	Pos    lexer.Position `parser:""`
	Str    *string        `parser:"  @String"`
	Number *float64       `parser:"| @Number"`
	Bool   *string        `parser:"| @('true' | 'false')"`
}
