package compare

import "testing"

func TestAlignmentRatioIdentical(t *testing.T) {
	seq := []string{"event_whenflagclicked", "motion_movesteps", "looks_say"}
	if got := AlignmentRatio(seq, seq); got != 1 {
		t.Fatalf("self-similarity must be 1, got %v", got)
	}
}

func TestAlignmentRatioSymmetric(t *testing.T) {
	a := []string{"a", "b", "c", "d", "e"}
	b := []string{"b", "d", "e", "f"}
	if AlignmentRatio(a, b) != AlignmentRatio(b, a) {
		t.Fatal("alignment ratio must be symmetric")
	}
}

func TestAlignmentRatioDisjoint(t *testing.T) {
	if got := AlignmentRatio([]string{"a", "b"}, []string{"c", "d"}); got != 0 {
		t.Fatalf("disjoint sequences must score 0, got %v", got)
	}
}

func TestAlignmentRatioPartial(t *testing.T) {
	a := []string{"a", "b", "c", "d"}
	b := []string{"a", "x", "c", "d"}
	// LCS is {a, c, d}: 2*3/(4+4) = 0.75
	if got := AlignmentRatio(a, b); got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
}

func TestAlignmentRatioRespectsOrder(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"c", "b", "a"}
	// Reversed sequence shares only a single-token subsequence.
	want := 2.0 * 1 / 6
	if got := AlignmentRatio(a, b); got != want {
		t.Fatalf("expected %v for reversed sequence, got %v", want, got)
	}
}

func TestAlignmentRatioEmpty(t *testing.T) {
	if got := AlignmentRatio(nil, nil); got != 1 {
		t.Fatalf("two empty sequences are identical, got %v", got)
	}
	if got := AlignmentRatio([]string{"a"}, nil); got != 0 {
		t.Fatalf("empty vs non-empty must score 0, got %v", got)
	}
}

func TestLCSLengthUnevenSequences(t *testing.T) {
	a := []string{"m", "o", "t", "i", "o", "n"}
	b := []string{"o", "i", "n"}
	if got := lcsLength(a, b); got != 3 {
		t.Fatalf("expected LCS length 3, got %d", got)
	}
}
