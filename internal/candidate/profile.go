package candidate

// JobScore is a per-job score and rationale attached to a profile by the
// import selector.
type JobScore struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale,omitempty"`
}

// Profile is a single candidate record from the pool. The pipeline treats it
// as read-only source data; only the import selector writes JobScores, and it
// does so on a copy.
type Profile struct {
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	YearsExperience float64  `json:"years_experience,omitempty" mapstructure:"years_experience"`
	Summary         string   `json:"summary,omitempty"`
	SourceFile      string   `json:"source_file,omitempty" mapstructure:"source_file"`

	JobScores map[string]JobScore `json:"job_scores,omitempty" mapstructure:"job_scores"`
}

// Clone returns a copy of the profile with its own JobScores map, so callers
// can attach attributions without touching the pool record.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	clone := *p
	clone.Skills = append([]string(nil), p.Skills...)
	clone.JobScores = make(map[string]JobScore, len(p.JobScores)+1)
	for id, score := range p.JobScores {
		clone.JobScores[id] = score
	}

	return &clone
}
