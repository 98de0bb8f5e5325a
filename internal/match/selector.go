package match

import "github.com/spigell/fit-screener/internal/candidate"

// Materialize builds the final candidate list from the chosen tiers,
// concatenated in the caller-specified order without re-sorting across tiers.
// Each returned profile is a copy of the pool record with the job's
// score/rationale recorded under the job ID; attributions the candidate
// already carries for other jobs are preserved.
//
// Tier names are not validated: the poor tier is excluded from imports by
// convention, but callers asking for it explicitly get it.
func Materialize(rs *ResultSet, job *candidate.Job, tiers []Tier) []*candidate.Profile {
	var selected []*candidate.Profile
	for _, tier := range tiers {
		for _, scored := range rs.ByTier(tier) {
			profile := scored.Profile.Clone()
			profile.JobScores[job.ID] = candidate.JobScore{
				Score:     scored.Score,
				Rationale: scored.Rationale,
			}
			selected = append(selected, profile)
		}
	}
	return selected
}
