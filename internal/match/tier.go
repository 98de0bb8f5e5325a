package match

// Tier is one of the five ordered fit bands a scored candidate falls into.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierModerate  Tier = "moderate"
	TierLow       Tier = "low"
	TierPoor      Tier = "poor"
)

// tierThresholds maps a lower score bound (inclusive) to its tier, scanned
// from the highest band down. Upper bounds are exclusive; poor catches
// everything below 30.
var tierThresholds = []struct {
	min  int
	tier Tier
}{
	{80, TierExcellent},
	{65, TierGood},
	{50, TierModerate},
	{30, TierLow},
	{0, TierPoor},
}

// Tiers lists all tiers from best to worst.
func Tiers() []Tier {
	return []Tier{TierExcellent, TierGood, TierModerate, TierLow, TierPoor}
}

// ImportableTiers lists the tiers offered for import by convention. Poor is
// excluded here but remains selectable when requested explicitly.
func ImportableTiers() []Tier {
	return []Tier{TierExcellent, TierGood, TierModerate, TierLow}
}

// Classify buckets a score into exactly one tier. Upstream scorers keep
// scores in [0,100]; out-of-range input is clamped for bucketing purposes
// only and never mutated.
func Classify(score int) Tier {
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	for _, threshold := range tierThresholds {
		if score >= threshold.min {
			return threshold.tier
		}
	}
	return TierPoor
}

// ParseTier maps a tier name to its Tier, reporting whether the name is known.
func ParseTier(name string) (Tier, bool) {
	for _, tier := range Tiers() {
		if string(tier) == name {
			return tier, true
		}
	}
	return "", false
}
