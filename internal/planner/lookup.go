package planner

// FirstMatch returns the first candidate satisfying pred. Candidate tables are ordered
// cheapest first, so the first match is the smallest sufficient choice.
func FirstMatch[T any](candidates []T, pred func(T) bool) (T, bool) {
	for _, c := range candidates {
		if pred(c) {
			return c, true
		}
	}
	var zero T
	return zero, false
}
