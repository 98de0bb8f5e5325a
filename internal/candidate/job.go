package candidate

// Job describes a position candidates are screened against. It is treated as
// immutable for the duration of a scan.
type Job struct {
	ID             string   `json:"id,omitempty" mapstructure:"id"`
	Title          string   `json:"title,omitempty" mapstructure:"title"`
	Description    string   `json:"description,omitempty" mapstructure:"description"`
	RequiredSkills []string `json:"required_skills,omitempty" mapstructure:"required-skills"`
}
