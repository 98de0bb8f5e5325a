package match

import "testing"

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  int
		expect Tier
	}{
		{100, TierExcellent},
		{80, TierExcellent},
		{79, TierGood},
		{65, TierGood},
		{64, TierModerate},
		{50, TierModerate},
		{49, TierLow},
		{30, TierLow},
		{29, TierPoor},
		{0, TierPoor},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.expect {
			t.Fatalf("score %d: expected %s, got %s", tt.score, tt.expect, got)
		}
	}
}

func TestClassifyClampsOutOfRangeInput(t *testing.T) {
	t.Parallel()

	if got := Classify(150); got != TierExcellent {
		t.Fatalf("expected excellent for 150, got %s", got)
	}
	if got := Classify(-10); got != TierPoor {
		t.Fatalf("expected poor for -10, got %s", got)
	}
}

func TestParseTier(t *testing.T) {
	t.Parallel()

	for _, tier := range Tiers() {
		parsed, ok := ParseTier(string(tier))
		if !ok || parsed != tier {
			t.Fatalf("expected to parse %s", tier)
		}
	}

	if _, ok := ParseTier("amazing"); ok {
		t.Fatal("expected unknown tier name to fail")
	}
}

func TestImportableTiersExcludePoor(t *testing.T) {
	t.Parallel()

	for _, tier := range ImportableTiers() {
		if tier == TierPoor {
			t.Fatal("poor must not be offered for import by default")
		}
	}
}
