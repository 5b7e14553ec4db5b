package vql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/store"
)

type fakeQueryRepository struct {
	store.Repository
	lastSQL   string
	lastArgs  []any
	result    store.QueryResult
	loggedErr string
	logged    bool
}

func (f *fakeQueryRepository) ExecuteQuery(ctx context.Context, query string, args []any) (store.QueryResult, error) {
	f.lastSQL = query
	f.lastArgs = args
	return f.result, nil
}

func (f *fakeQueryRepository) AppendQueryLog(ctx context.Context, entry model.QueryLog) error {
	f.logged = true
	f.loggedErr = entry.Error
	return nil
}

func TestExecutor_CompilesBoundParameters(t *testing.T) {
	repo := &fakeQueryRepository{result: store.QueryResult{RowCount: 3, Elapsed: time.Millisecond}}
	exec := NewExecutor(repo)

	_, err := exec.Execute(context.Background(), "SELECT value FROM metrics WHERE service_name = 'checkout' LIMIT 10")
	require.NoError(t, err)

	assert.Contains(t, repo.lastSQL, "$1")
	assert.NotContains(t, repo.lastSQL, "checkout")
	require.Len(t, repo.lastArgs, 1)
	assert.Equal(t, "checkout", repo.lastArgs[0])
	assert.True(t, repo.logged)
	assert.Empty(t, repo.loggedErr)
}

func TestExecutor_RejectsBeforeTouchingStore(t *testing.T) {
	repo := &fakeQueryRepository{}
	exec := NewExecutor(repo)

	_, err := exec.Execute(context.Background(), "SELECT * FROM metrics; DROP TABLE metrics")
	assert.Error(t, err)
	assert.Empty(t, repo.lastSQL)
	assert.False(t, repo.logged)
}

func TestExecutor_RendersCountStarAndGroupBy(t *testing.T) {
	repo := &fakeQueryRepository{}
	exec := NewExecutor(repo)

	_, err := exec.Execute(context.Background(), "SELECT service_name, COUNT(*) FROM metrics GROUP BY service_name LIMIT 5")
	require.NoError(t, err)
	assert.Contains(t, repo.lastSQL, "COUNT(*)")
	assert.Contains(t, repo.lastSQL, "GROUP BY service_name")
}

func TestExecutor_RendersOrderByAggregateFunction(t *testing.T) {
	repo := &fakeQueryRepository{result: store.QueryResult{RowCount: 5, Elapsed: time.Millisecond}}
	exec := NewExecutor(repo)

	_, err := exec.Execute(context.Background(),
		"SELECT service_name, COUNT(*) FROM metrics GROUP BY service_name ORDER BY COUNT(*) DESC LIMIT 5")
	require.NoError(t, err)
	assert.Contains(t, repo.lastSQL, "ORDER BY COUNT(*) DESC")
	assert.Contains(t, repo.lastSQL, "LIMIT 5")
	assert.True(t, repo.logged)
	assert.Empty(t, repo.loggedErr)
}
