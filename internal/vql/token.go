// Package vql is C11/C12: the constrained, SELECT-only query language
// exposed to clients in place of raw SQL. A query goes through a
// lexer, a recursive-descent parser, a whitelist validator, and
// finally an executor that binds values as positional parameters and
// never string-concatenates a client-supplied value into SQL.
package vql

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenComma
	TokenLParen
	TokenRParen
	TokenSemicolon
	TokenOperator
	TokenStar
	TokenKeyword
)

// Token is one lexical unit plus its source offset, used for
// descriptive validator error messages.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "GROUP": true, "BY": true,
	"ORDER": true, "ASC": true, "DESC": true, "LIMIT": true, "AND": true,
	"AS": true, "LIKE": true,
}

// denylist is checked case-insensitively, word-bounded, over the raw
// query text before lexing even starts. Because the match is
// word-bounded, a keyword that only appears inside a longer identifier
// (such as "updated_at") does not trip it.
var denylistKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "TRUNCATE", "ALTER", "CREATE",
	"REPLACE", "EXEC", "EXECUTE", "PRAGMA", "ATTACH", "DETACH",
}

// allowedFunctions is the VQL aggregate-function whitelist.
var allowedFunctions = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"PERCENTILE": true,
}

// allowedOperators is the VQL comparison-operator whitelist.
var allowedOperators = map[string]bool{
	"=": true, ">": true, "<": true, ">=": true, "<=": true, "!=": true,
	"LIKE": true,
}
