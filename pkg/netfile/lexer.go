package netfile

import "github.com/alecthomas/participle/v2/lexer"

// netLexer tokenizes netlist text. Pin must come before Name so that a
// "REF.PIN" word is never read as a bare name.
var netLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Pin", Pattern: `[A-Za-z][A-Za-z0-9_+-]*\.[A-Za-z0-9_+~-]+`},
	{Name: "Name", Pattern: `[A-Za-z0-9_+~/.-]+`},
	{Name: "Punct", Pattern: `[:,]`},
})
