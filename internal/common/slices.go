package common

// SplitBatches splits items into consecutive sub-slices of at most size
// elements. The last batch may be shorter. A non-positive size yields a
// single batch.
func SplitBatches[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	var batches [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
