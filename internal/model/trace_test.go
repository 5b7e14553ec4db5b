package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/model"
)

func TestBuildSpanTree(t *testing.T) {
	now := time.Now()
	spans := []model.Span{
		{SpanID: "root", TraceID: "t1", ParentSpanID: "", StartTime: now},
		{SpanID: "child-a", TraceID: "t1", ParentSpanID: "root", StartTime: now},
		{SpanID: "child-b", TraceID: "t1", ParentSpanID: "root", StartTime: now},
		{SpanID: "grandchild", TraceID: "t1", ParentSpanID: "child-a", StartTime: now},
	}

	roots := model.BuildSpanTree(spans)
	require.Len(t, roots, 1)
	assert.Equal(t, "root", roots[0].SpanID)
	assert.Equal(t, 0, roots[0].Depth)
	require.Len(t, roots[0].Children, 2)

	var childA *model.SpanNode
	for _, c := range roots[0].Children {
		if c.SpanID == "child-a" {
			childA = c
		}
	}
	require.NotNil(t, childA)
	assert.Equal(t, 1, childA.Depth)
	require.Len(t, childA.Children, 1)
	assert.Equal(t, 2, childA.Children[0].Depth)
}

func TestBuildSpanTree_OrphanBecomesRoot(t *testing.T) {
	now := time.Now()
	spans := []model.Span{
		{SpanID: "orphan", TraceID: "t1", ParentSpanID: "missing-parent", StartTime: now},
	}

	roots := model.BuildSpanTree(spans)
	require.Len(t, roots, 1)
	assert.Equal(t, "orphan", roots[0].SpanID)
}
