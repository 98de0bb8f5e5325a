package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/fit-screener/internal/candidate"
)

const (
	skillWeight = 70

	keywordWeight    = 30
	keywordCredit    = 3
	maxDescKeywords  = 10
	minKeywordLength = 4
)

// QuickScore computes a cheap heuristic fit score in [0,100] for a candidate
// against a job. It is pure and deterministic: the same inputs always produce
// the same score.
//
// Two weighted parts are summed and rounded: exact case-insensitive overlap
// between the candidate's skills and the job's required skills (up to 70), and
// capped substring matches of job keywords in the candidate summary (up to 30).
func QuickScore(job *candidate.Job, profile *candidate.Profile) int {
	score := skillOverlapScore(job.RequiredSkills, profile.Skills) +
		keywordOverlapScore(jobKeywords(job), profile.Summary)

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func skillOverlapScore(required, skills []string) float64 {
	if len(required) == 0 {
		return 0
	}

	have := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		have[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}

	matched := 0
	for _, skill := range required {
		if _, ok := have[strings.ToLower(strings.TrimSpace(skill))]; ok {
			matched++
		}
	}

	return skillWeight * float64(matched) / float64(len(required))
}

func keywordOverlapScore(keywords []string, summary string) float64 {
	if summary == "" || len(keywords) == 0 {
		return 0
	}

	haystack := strings.ToLower(summary)
	matched := 0
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			matched++
		}
	}

	credit := keywordCredit * matched
	if credit > keywordWeight {
		credit = keywordWeight
	}
	return float64(credit)
}

// jobKeywords builds the keyword set for the summary match: title words, all
// required skills, and the first 10 description words longer than 4 runes, in
// description order. All lowercase, deduplicated, insertion order preserved.
func jobKeywords(job *candidate.Job) []string {
	var keywords []string
	seen := make(map[string]struct{})
	add := func(word string) {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			return
		}
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	for _, word := range strings.Fields(job.Title) {
		add(word)
	}
	for _, skill := range job.RequiredSkills {
		add(skill)
	}

	taken := 0
	for _, word := range strings.Fields(job.Description) {
		if taken >= maxDescKeywords {
			break
		}
		if len([]rune(word)) <= minKeywordLength {
			continue
		}
		add(word)
		taken++
	}

	return keywords
}

// OverlappingSkills returns the candidate skills that exactly match a required
// skill, case-insensitively, in required-skill order and original casing.
func OverlappingSkills(job *candidate.Job, profile *candidate.Profile) []string {
	have := make(map[string]struct{}, len(profile.Skills))
	for _, skill := range profile.Skills {
		have[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}

	var overlap []string
	for _, skill := range job.RequiredSkills {
		if _, ok := have[strings.ToLower(strings.TrimSpace(skill))]; ok {
			overlap = append(overlap, skill)
		}
	}
	return overlap
}

// HeuristicRationale synthesizes a human-readable explanation for a
// heuristically scored candidate from the literal overlapping skills and the
// years of experience. Used on the non-oracle path and as the oracle fallback.
func HeuristicRationale(job *candidate.Job, profile *candidate.Profile) string {
	years := strings.TrimSuffix(fmt.Sprintf("%.1f", profile.YearsExperience), ".0")

	overlap := OverlappingSkills(job, profile)
	if len(overlap) == 0 {
		return fmt.Sprintf("No direct match with required skills; %s years of experience.", years)
	}

	return fmt.Sprintf("Matches required skills: %s; %s years of experience.",
		strings.Join(overlap, ", "), years)
}
