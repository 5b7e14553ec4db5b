package vql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsSimpleSelect(t *testing.T) {
	q, err := Validate("SELECT service_name, value FROM metrics WHERE status_code = 500 LIMIT 100")
	require.NoError(t, err)
	assert.Equal(t, "metrics", q.Table)
	assert.Len(t, q.Fields, 2)
	assert.Equal(t, 100, q.Limit)
}

func TestValidate_AcceptsAggregateWithGroupByAndOrderBy(t *testing.T) {
	q, err := Validate("SELECT service_name, COUNT(*) FROM metrics GROUP BY service_name ORDER BY service_name DESC LIMIT 5")
	require.NoError(t, err)
	assert.Len(t, q.GroupBy, 1)
	require.Len(t, q.OrderBy, 1)
	assert.True(t, q.OrderBy[0].Descending)
}

func TestValidate_AcceptsOrderByAggregateFunction(t *testing.T) {
	q, err := Validate("SELECT service_name, COUNT(*) FROM metrics GROUP BY service_name ORDER BY COUNT(*) DESC LIMIT 5")
	require.NoError(t, err)
	require.Len(t, q.OrderBy, 1)
	assert.Equal(t, "COUNT", q.OrderBy[0].Function)
	assert.True(t, q.OrderBy[0].Star)
	assert.True(t, q.OrderBy[0].Descending)
	assert.Equal(t, 5, q.Limit)
}

func TestValidate_AcceptsPercentile(t *testing.T) {
	q, err := Validate("SELECT PERCENTILE(duration_ms, 95) FROM metrics LIMIT 1")
	require.NoError(t, err)
	assert.Equal(t, "PERCENTILE", q.Fields[0].Function)
	assert.Equal(t, "95", q.Fields[0].Arg)
}

func TestValidate_RejectsSecondStatement(t *testing.T) {
	_, err := Validate("SELECT * FROM metrics; DROP TABLE metrics")
	assert.Error(t, err)
}

func TestValidate_RejectsComments(t *testing.T) {
	_, err := Validate("SELECT value FROM metrics -- comment")
	assert.Error(t, err)

	_, err = Validate("SELECT value FROM metrics /* comment */")
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownTable(t *testing.T) {
	_, err := Validate("SELECT * FROM users")
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownColumn(t *testing.T) {
	_, err := Validate("SELECT password FROM metrics")
	assert.Error(t, err)
}

func TestValidate_RejectsDenylistedKeyword(t *testing.T) {
	_, err := Validate("SELECT value FROM metrics WHERE service_name = 'a' AND 1=1 DROP TABLE metrics")
	assert.Error(t, err)
}

func TestValidate_RejectsTooManySelectFields(t *testing.T) {
	q := "SELECT "
	for i := 0; i < 21; i++ {
		if i > 0 {
			q += ", "
		}
		q += "value"
	}
	q += " FROM metrics"
	_, err := Validate(q)
	assert.Error(t, err)
}

func TestValidate_RejectsTooManyWhereConjuncts(t *testing.T) {
	q := "SELECT value FROM metrics WHERE "
	for i := 0; i < 11; i++ {
		if i > 0 {
			q += " AND "
		}
		q += "status_code = 200"
	}
	_, err := Validate(q)
	assert.Error(t, err)
}

func TestValidate_RejectsLimitOutOfRange(t *testing.T) {
	_, err := Validate("SELECT value FROM metrics LIMIT 0")
	assert.Error(t, err)

	_, err = Validate("SELECT value FROM metrics LIMIT 10001")
	assert.Error(t, err)
}

func TestValidate_RejectsExcessiveLikeWildcardRun(t *testing.T) {
	_, err := Validate("SELECT value FROM metrics WHERE endpoint LIKE '%%%'")
	assert.Error(t, err)
}

func TestValidate_RejectsOversizedQuery(t *testing.T) {
	q := "SELECT value FROM metrics WHERE service_name = '"
	for len(q) < 5001 {
		q += "a"
	}
	q += "'"
	_, err := Validate(q)
	assert.Error(t, err)
}

func TestValidate_RejectsSystemTablePrefix(t *testing.T) {
	_, err := Validate("SELECT value FROM sqlite_master")
	assert.Error(t, err)
}
