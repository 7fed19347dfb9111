package sync

// Delta is the minimal membership change reconciling a group against a
// roster. ToRemove and ToAdd are always disjoint; Unchanged is kept for
// logging only and never drives a mutation.
type Delta struct {
	ToRemove  []string
	ToAdd     []string
	Unchanged []string
}

// ComputeDelta compares the group's current member login ids against the
// course's desired roster. Duplicate entries collapse; output order is
// not a contract. Empty inputs yield empty deltas.
func ComputeDelta(current, desired []string) Delta {
	currentSet := toSet(current)
	desiredSet := toSet(desired)

	var delta Delta
	for loginID := range currentSet {
		if desiredSet[loginID] {
			delta.Unchanged = append(delta.Unchanged, loginID)
		} else {
			delta.ToRemove = append(delta.ToRemove, loginID)
		}
	}
	for loginID := range desiredSet {
		if !currentSet[loginID] {
			delta.ToAdd = append(delta.ToAdd, loginID)
		}
	}
	return delta
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
