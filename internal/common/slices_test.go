package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBatches(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	batches := SplitBatches(items, 3)
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}, batches)
}

func TestSplitBatchesExactMultiple(t *testing.T) {
	batches := SplitBatches([]string{"a", "b", "c", "d"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, batches)
}

func TestSplitBatchesSmallerThanSize(t *testing.T) {
	batches := SplitBatches([]int{1, 2}, 20)
	assert.Equal(t, [][]int{{1, 2}}, batches)
}

func TestSplitBatchesEmpty(t *testing.T) {
	assert.Empty(t, SplitBatches([]int{}, 20))
}
