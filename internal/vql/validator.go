package vql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vantage-platform/vantage/internal/store"
)

const (
	maxQueryLength    = 5000
	maxSelectFields   = 20
	maxWhereConjuncts = 10
	maxGroupByCols    = 5
	maxOrderByTerms   = 3
	maxLimit          = 10000
	maxLikePattern    = 100
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate runs the full C11 validation pipeline over raw VQL text:
// pre-lex textual checks, lex, parse, then whitelist/complexity checks
// against the parsed AST. It returns the validated query ready for the
// executor, or a *ValidationError naming the rule that tripped.
func Validate(raw string) (*Query, error) {
	if err := checkRawText(raw); err != nil {
		return nil, err
	}

	tokens, err := newLexer(raw).tokenize()
	if err != nil {
		return nil, err
	}

	query, err := newParser(tokens, raw).parseQuery()
	if err != nil {
		return nil, err
	}

	if err := checkSemantics(query); err != nil {
		return nil, err
	}

	return query, nil
}

func checkRawText(raw string) error {
	if len(raw) == 0 {
		return newValidationError("query", "query must not be empty")
	}
	if len(raw) > maxQueryLength {
		return newValidationError("query", "query exceeds maximum length of %d", maxQueryLength)
	}
	if strings.Contains(raw, "--") {
		return newValidationError("query", "SQL comments are not allowed")
	}
	if strings.Contains(raw, "/*") || strings.Contains(raw, "*/") {
		return newValidationError("query", "SQL comments are not allowed")
	}
	if idx := strings.Index(raw, ";"); idx != -1 && idx != len(strings.TrimRight(raw, " \t\n\r"))-1 {
		return newValidationError("query", "';' is only allowed as the final character")
	}
	if err := checkDenylist(raw); err != nil {
		return err
	}
	return nil
}

func checkDenylist(raw string) error {
	upper := strings.ToUpper(raw)
	for _, kw := range denylistKeywords {
		re := regexp.MustCompile(`\b` + kw + `\b`)
		if re.MatchString(upper) {
			return newValidationError("query", "keyword %q is not allowed", kw)
		}
	}
	return nil
}

func checkSemantics(q *Query) error {
	if len(q.Fields) > maxSelectFields {
		return newValidationError("select", "at most %d SELECT fields allowed", maxSelectFields)
	}
	if !store.AllowedTables[q.Table] {
		return newValidationError("table", "table %q is not allowed", q.Table)
	}
	if strings.HasPrefix(strings.ToLower(q.Table), "sqlite_") {
		return newValidationError("table", "system tables are not allowed")
	}

	cols := store.AllowedColumns[q.Table]

	for _, f := range q.Fields {
		if f.Star {
			continue
		}
		if !identPattern.MatchString(f.Column) {
			return newValidationError("select", "invalid identifier %q", f.Column)
		}
		if !cols[f.Column] {
			return newValidationError("select", "column %q is not allowed on table %q", f.Column, q.Table)
		}
		if f.Function != "" && !allowedFunctions[f.Function] {
			return newValidationError("select", "function %q is not allowed", f.Function)
		}
		if f.Function == "PERCENTILE" {
			if f.Arg == "" {
				return newValidationError("select", "PERCENTILE requires a numeric second argument")
			}
			if n, err := strconv.Atoi(f.Arg); err != nil || n < 0 || n > 100 {
				return newValidationError("select", "PERCENTILE argument must be an integer in [0, 100]")
			}
		}
		if f.Alias != "" && !identPattern.MatchString(f.Alias) {
			return newValidationError("select", "invalid alias %q", f.Alias)
		}
	}

	if len(q.Where) > maxWhereConjuncts {
		return newValidationError("where", "at most %d WHERE conjuncts allowed", maxWhereConjuncts)
	}
	for _, c := range q.Where {
		if !identPattern.MatchString(c.Column) {
			return newValidationError("where", "invalid identifier %q", c.Column)
		}
		if !cols[c.Column] {
			return newValidationError("where", "column %q is not allowed on table %q", c.Column, q.Table)
		}
		if !allowedOperators[c.Operator] {
			return newValidationError("where", "operator %q is not allowed", c.Operator)
		}
		if c.Operator == "LIKE" {
			if err := checkLikePattern(c.Value); err != nil {
				return err
			}
		}
		if err := checkDenylist(c.Value); err != nil {
			return err
		}
	}

	if len(q.GroupBy) > maxGroupByCols {
		return newValidationError("group_by", "at most %d GROUP BY columns allowed", maxGroupByCols)
	}
	for _, col := range q.GroupBy {
		if !identPattern.MatchString(col) || !cols[col] {
			return newValidationError("group_by", "column %q is not allowed on table %q", col, q.Table)
		}
	}

	if len(q.OrderBy) > maxOrderByTerms {
		return newValidationError("order_by", "at most %d ORDER BY terms allowed", maxOrderByTerms)
	}
	for _, term := range q.OrderBy {
		if term.Function != "" && !allowedFunctions[term.Function] {
			return newValidationError("order_by", "function %q is not allowed", term.Function)
		}
		if term.Star {
			if term.Function != "COUNT" {
				return newValidationError("order_by", "'*' is only allowed as an argument to COUNT")
			}
			continue
		}
		if !identPattern.MatchString(term.Column) {
			return newValidationError("order_by", "invalid identifier %q", term.Column)
		}
		if !cols[term.Column] {
			return newValidationError("order_by", "column %q is not allowed on table %q", term.Column, q.Table)
		}
		if term.Function == "PERCENTILE" {
			if term.Arg == "" {
				return newValidationError("order_by", "PERCENTILE requires a numeric second argument")
			}
			if n, err := strconv.Atoi(term.Arg); err != nil || n < 0 || n > 100 {
				return newValidationError("order_by", "PERCENTILE argument must be an integer in [0, 100]")
			}
		}
	}

	if q.HasLimit && (q.Limit <= 0 || q.Limit > maxLimit) {
		return newValidationError("limit", "LIMIT must be in (0, %d]", maxLimit)
	}

	return nil
}

func checkLikePattern(pattern string) error {
	if len(pattern) > maxLikePattern {
		return newValidationError("where", "LIKE pattern exceeds maximum length of %d", maxLikePattern)
	}
	if runOf(pattern, '%', 3) || runOf(pattern, '_', 3) {
		return newValidationError("where", "LIKE pattern has an excessive wildcard run")
	}
	return nil
}

func runOf(s string, r byte, n int) bool {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == r {
			count++
			if count >= n {
				return true
			}
		} else {
			count = 0
		}
	}
	return false
}
