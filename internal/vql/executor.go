package vql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/store"
)

// Executor translates a validated Query into bound-parameter SQL and
// runs it through the store, logging every execution to QueryLog so
// the downsampling importance scorer sees read traffic routed through
// VQL, not just direct timeseries reads.
type Executor struct {
	repo store.Repository
}

func NewExecutor(repo store.Repository) *Executor {
	return &Executor{repo: repo}
}

// Execute validates raw, runs it, and appends the QueryLog entry. It
// never reaches the store on a validation failure.
func (e *Executor) Execute(ctx context.Context, raw string) (store.QueryResult, error) {
	query, err := Validate(raw)
	if err != nil {
		return store.QueryResult{}, err
	}

	sql, args := compile(query)

	result, err := e.repo.ExecuteQuery(ctx, sql, args)

	entry := model.QueryLog{
		Timestamp:  time.Now(),
		QueryText:  raw,
		RowCount:   result.RowCount,
		DurationMs: float64(result.Elapsed.Milliseconds()),
		Source:     "vql",
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if logErr := e.repo.AppendQueryLog(ctx, entry); logErr != nil {
		return result, logErr
	}

	return result, err
}

// compile renders a validated Query into SQL text with $N placeholders
// and the ordered argument slice pgx expects. Every identifier in sql
// has already passed the whitelist and [A-Za-z_][A-Za-z0-9_]* checks,
// so splicing them verbatim is safe; every value is bound positionally.
func compile(q *Query) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(renderFields(q.Fields))
	sb.WriteString(" FROM ")
	sb.WriteString(q.Table)

	if len(q.Where) > 0 {
		sb.WriteString(" WHERE ")
		for i, c := range q.Where {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			args = append(args, coerceValue(c))
			sb.WriteString(fmt.Sprintf("%s %s $%d", c.Column, c.Operator, len(args)))
		}
	}

	if len(q.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(q.GroupBy, ", "))
	}

	if len(q.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		parts := make([]string, len(q.OrderBy))
		for i, t := range q.OrderBy {
			dir := "ASC"
			if t.Descending {
				dir = "DESC"
			}
			expr := renderField(SelectField{Function: t.Function, Column: t.Column, Arg: t.Arg, Star: t.Star})
			parts[i] = expr + " " + dir
		}
		sb.WriteString(strings.Join(parts, ", "))
	}

	if q.HasLimit {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", q.Limit))
	}

	return sb.String(), args
}

func renderFields(fields []SelectField) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = renderField(f)
	}
	return strings.Join(parts, ", ")
}

func renderField(f SelectField) string {
	var expr string
	switch {
	case f.Star:
		if f.Function == "COUNT" {
			expr = "COUNT(*)"
		} else {
			expr = "*"
		}
	case f.Function == "PERCENTILE":
		n, _ := strconv.Atoi(f.Arg)
		expr = fmt.Sprintf("PERCENTILE_CONT(%g) WITHIN GROUP (ORDER BY %s)", float64(n)/100, f.Column)
	case f.Function != "":
		expr = fmt.Sprintf("%s(%s)", f.Function, f.Column)
	default:
		expr = f.Column
	}
	if f.Alias != "" {
		expr += " AS " + f.Alias
	}
	return expr
}

func coerceValue(c Condition) any {
	if c.IsString {
		return c.Value
	}
	if n, err := strconv.ParseFloat(c.Value, 64); err == nil {
		return n
	}
	return c.Value
}
