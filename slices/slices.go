package slices

// Apply f to each element of slice in order, returning the results.
func Map[T1, T2 any](slice []T1, f func(T1) T2) []T2 {
	if slice == nil {
		return nil
	}

	rv := make([]T2, len(slice))
	for i, v := range slice {
		rv[i] = f(v)
	}
	return rv
}

// Filter returns the elements of slice for which keep returns true,
// preserving their order.
func Filter[T any](slice []T, keep func(T) bool) []T {
	if slice == nil {
		return nil
	}

	rv := make([]T, 0, len(slice))
	for _, v := range slice {
		if keep(v) {
			rv = append(rv, v)
		}
	}
	return rv
}
