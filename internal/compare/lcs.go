package compare

// AlignmentRatio scores two token sequences as 2*M/(len(a)+len(b)), where M
// is the length of their longest common subsequence. The result is in [0, 1]:
// identical sequences score 1, disjoint sequences score 0, and the metric is
// symmetric. Two empty sequences score 1 by convention (they are identical);
// callers decide whether empty signatures are comparable at all.
func AlignmentRatio(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := lcsLength(a, b)
	return 2 * float64(m) / float64(len(a)+len(b))
}

// lcsLength computes the longest-common-subsequence length with two-row
// dynamic programming; the shorter sequence bounds the row width.
func lcsLength(a, b []string) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return prev[len(b)]
}
