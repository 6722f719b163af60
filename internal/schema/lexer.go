package schema

import "github.com/alecthomas/participle/v2/lexer"

// dslLexer tokenizes the policy-type DSL. Order matters: longer patterns
// must be tried before shorter ones sharing a prefix, and String/Number
// must precede Ident so quoted text and numeric literals never fall
// through to the identifier rule.
var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[{}\[\]:,;=@.]`},
	{Name: "whitespace", Pattern: `\s+`},
})
