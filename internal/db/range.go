package db

// NormalizeRange converts Redis-style inclusive [start, stop] indexes, where
// negative values count from the tail, into a half-open [lo, hi) window over
// a list of length n. ok is false when the window is empty.
func NormalizeRange(start, stop, n int64) (lo, hi int64, ok bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop + 1, true
}
