package match

import (
	"sort"

	"github.com/spigell/fit-screener/internal/candidate"
)

// Scored is a candidate profile with its final match score, a human-readable
// rationale and whether the score came from the external analyzer. Immutable
// once created.
type Scored struct {
	Profile   *candidate.Profile `json:"profile"`
	Score     int                `json:"score"`
	Rationale string             `json:"rationale,omitempty"`
	Oracle    bool               `json:"oracle,omitempty"`
}

// ResultSet holds the five disjoint tiers of scored candidates, each sorted
// by score descending. Every candidate from a scanned pool appears in exactly
// one tier exactly once.
type ResultSet struct {
	Excellent []*Scored `json:"excellent"`
	Good      []*Scored `json:"good"`
	Moderate  []*Scored `json:"moderate"`
	Low       []*Scored `json:"low"`
	Poor      []*Scored `json:"poor"`
}

// Add buckets a scored candidate into its tier.
func (rs *ResultSet) Add(s *Scored) {
	switch Classify(s.Score) {
	case TierExcellent:
		rs.Excellent = append(rs.Excellent, s)
	case TierGood:
		rs.Good = append(rs.Good, s)
	case TierModerate:
		rs.Moderate = append(rs.Moderate, s)
	case TierLow:
		rs.Low = append(rs.Low, s)
	default:
		rs.Poor = append(rs.Poor, s)
	}
}

// ByTier returns the candidates bucketed into the given tier.
func (rs *ResultSet) ByTier(tier Tier) []*Scored {
	switch tier {
	case TierExcellent:
		return rs.Excellent
	case TierGood:
		return rs.Good
	case TierModerate:
		return rs.Moderate
	case TierLow:
		return rs.Low
	case TierPoor:
		return rs.Poor
	default:
		return nil
	}
}

// Total counts candidates across all tiers.
func (rs *ResultSet) Total() int {
	total := 0
	for _, tier := range Tiers() {
		total += len(rs.ByTier(tier))
	}
	return total
}

// All returns every scored candidate, best tier first.
func (rs *ResultSet) All() []*Scored {
	all := make([]*Scored, 0, rs.Total())
	for _, tier := range Tiers() {
		all = append(all, rs.ByTier(tier)...)
	}
	return all
}

// Sort orders each tier by score descending, keeping insertion order for ties.
func (rs *ResultSet) Sort() {
	for _, tier := range Tiers() {
		scored := rs.ByTier(tier)
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Score > scored[j].Score
		})
	}
}
