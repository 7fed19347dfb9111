package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDelta(t *testing.T) {
	delta := ComputeDelta(
		[]string{"alice", "dave"},
		[]string{"alice", "bob", "carol"},
	)

	assert.ElementsMatch(t, []string{"dave"}, delta.ToRemove)
	assert.ElementsMatch(t, []string{"bob", "carol"}, delta.ToAdd)
	assert.ElementsMatch(t, []string{"alice"}, delta.Unchanged)
}

func TestComputeDeltaIdenticalSets(t *testing.T) {
	delta := ComputeDelta([]string{"a", "b"}, []string{"b", "a"})

	assert.Empty(t, delta.ToRemove)
	assert.Empty(t, delta.ToAdd)
	assert.ElementsMatch(t, []string{"a", "b"}, delta.Unchanged)
}

func TestComputeDeltaEmptyInputs(t *testing.T) {
	delta := ComputeDelta(nil, nil)
	assert.Empty(t, delta.ToRemove)
	assert.Empty(t, delta.ToAdd)
	assert.Empty(t, delta.Unchanged)

	delta = ComputeDelta(nil, []string{"a"})
	assert.Empty(t, delta.ToRemove)
	assert.ElementsMatch(t, []string{"a"}, delta.ToAdd)

	delta = ComputeDelta([]string{"a"}, nil)
	assert.ElementsMatch(t, []string{"a"}, delta.ToRemove)
	assert.Empty(t, delta.ToAdd)
}

func TestComputeDeltaCollapsesDuplicates(t *testing.T) {
	delta := ComputeDelta(
		[]string{"a", "a", "b"},
		[]string{"b", "b", "c", "c"},
	)

	assert.ElementsMatch(t, []string{"a"}, delta.ToRemove)
	assert.ElementsMatch(t, []string{"c"}, delta.ToAdd)
	assert.ElementsMatch(t, []string{"b"}, delta.Unchanged)
}

// The three result sets partition the union of the inputs.
func TestComputeDeltaPartition(t *testing.T) {
	current := []string{"a", "b", "c", "d"}
	desired := []string{"c", "d", "e", "f"}

	delta := ComputeDelta(current, desired)

	seen := make(map[string]int)
	for _, id := range delta.ToRemove {
		seen[id]++
	}
	for _, id := range delta.ToAdd {
		seen[id]++
	}
	for _, id := range delta.Unchanged {
		seen[id]++
	}

	union := map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true, "f": true}
	assert.Len(t, seen, len(union))
	for id, count := range seen {
		assert.True(t, union[id])
		assert.Equal(t, 1, count, "login id %q appears in more than one result set", id)
	}
}
