package downsample

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-platform/vantage/internal/model"
)

func TestImportance_NoErrorsNoAccessIsLow(t *testing.T) {
	samples := []model.Metric{
		{Value: 10}, {Value: 10}, {Value: 10},
	}
	score := importance(samples, 0)
	assert.Less(t, score, 50.0)
}

func TestImportance_ErrorsDominateScore(t *testing.T) {
	samples := []model.Metric{
		{Value: 10, StatusCode: 500},
		{Value: 10, StatusCode: 500},
	}
	score := importance(samples, 0)
	assert.Greater(t, score, 30.0)
}

func TestImportance_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, importance(nil, 100))
}
