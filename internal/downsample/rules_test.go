package downsample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionFor(t *testing.T) {
	cases := []struct {
		age  int
		score float64
		want int
	}{
		{age: 7, score: 90, want: 0},  // keep all
		{age: 7, score: 65, want: 5},
		{age: 7, score: 10, want: 15},
		{age: 30, score: 90, want: 5},
		{age: 30, score: 60, want: 60},
		{age: 30, score: 0, want: 360},
		{age: 90, score: 99, want: 1440},
		{age: 90, score: 0, want: 1440},
	}

	for _, tc := range cases {
		got := resolutionFor(tc.age, tc.score)
		assert.Equalf(t, tc.want, got, "age=%d score=%v", tc.age, tc.score)
	}
}

func TestAges_DistinctAndSorted(t *testing.T) {
	assert.Equal(t, []int{1, 7, 30, 90}, ages())
}
