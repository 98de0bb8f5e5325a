package match

import (
	"testing"

	"github.com/spigell/fit-screener/internal/candidate"
)

func TestMaterializeConcatenatesTiersInCallerOrder(t *testing.T) {
	t.Parallel()

	rs := &ResultSet{}
	rs.Add(scoredWith("ex", 90))
	rs.Add(scoredWith("good", 70))
	rs.Add(scoredWith("mod", 55))

	job := &candidate.Job{ID: "job-1"}

	selected := Materialize(rs, job, []Tier{TierGood, TierExcellent})
	if len(selected) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(selected))
	}
	if selected[0].Name != "good" || selected[1].Name != "ex" {
		t.Fatalf("expected caller-specified tier order, got %s, %s", selected[0].Name, selected[1].Name)
	}
}

func TestMaterializeAttachesJobScoreAdditively(t *testing.T) {
	t.Parallel()

	profile := &candidate.Profile{
		Name:      "Jane",
		JobScores: map[string]candidate.JobScore{"other-job": {Score: 40, Rationale: "old"}},
	}
	rs := &ResultSet{}
	rs.Add(&Scored{Profile: profile, Score: 85, Rationale: "strong overlap"})

	job := &candidate.Job{ID: "job-1"}
	selected := Materialize(rs, job, []Tier{TierExcellent})

	got := selected[0]
	if got.JobScores["job-1"].Score != 85 || got.JobScores["job-1"].Rationale != "strong overlap" {
		t.Fatalf("unexpected attribution: %+v", got.JobScores["job-1"])
	}
	if got.JobScores["other-job"].Score != 40 {
		t.Fatal("expected existing attributions to be preserved")
	}

	// The pool record itself stays untouched.
	if _, ok := profile.JobScores["job-1"]; ok {
		t.Fatal("expected pool profile to remain unmodified")
	}
}

func TestMaterializePoorTierWhenExplicitlyRequested(t *testing.T) {
	t.Parallel()

	rs := &ResultSet{}
	rs.Add(scoredWith("weak", 10))

	selected := Materialize(rs, &candidate.Job{ID: "job-1"}, []Tier{TierPoor})
	if len(selected) != 1 || selected[0].Name != "weak" {
		t.Fatalf("expected poor tier to be honored on request, got %v", selected)
	}
}
