package candidate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPoolWeaklyTypedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	payload := `[
	  {"name": "Jane", "email": "jane@example.com", "skills": ["Go"], "years_experience": "7", "summary": "golang services"},
	  {"name": "John", "skills": ["SQL"], "years_experience": 3.5}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("writing pool file: %v", err)
	}

	pool, err := LoadPool(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool.Len() != 2 {
		t.Fatalf("expected 2 profiles, got %d", pool.Len())
	}

	jane := pool.FindByName("Jane")
	if jane == nil {
		t.Fatal("expected to find Jane")
	}
	if jane.YearsExperience != 7 {
		t.Fatalf("expected string years to decode to 7, got %v", jane.YearsExperience)
	}

	john := pool.FindByName("John")
	if john == nil || john.YearsExperience != 3.5 {
		t.Fatalf("unexpected John profile: %+v", john)
	}
}

func TestLoadPoolEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("writing pool file: %v", err)
	}

	pool, err := LoadPool(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.Len() != 0 {
		t.Fatalf("expected empty pool, got %d profiles", pool.Len())
	}
}

func TestLoadPoolMissingFile(t *testing.T) {
	if _, err := LoadPool(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing pool file")
	}
}

func TestLoadPoolClampsNegativeExperience(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	if err := os.WriteFile(path, []byte(`[{"name": "Neg", "years_experience": -2}]`), 0o644); err != nil {
		t.Fatalf("writing pool file: %v", err)
	}

	pool, err := LoadPool(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pool.Items[0].YearsExperience; got != 0 {
		t.Fatalf("expected clamped experience, got %v", got)
	}
}

func TestDemoPool(t *testing.T) {
	pool, err := DemoPool()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.Len() == 0 {
		t.Fatal("expected demo pool to contain profiles")
	}
	for _, profile := range pool.Items {
		if profile.Name == "" {
			t.Fatal("expected every demo profile to have a name")
		}
	}
}

func TestProfileCloneIsIndependent(t *testing.T) {
	original := &Profile{
		Name:      "Jane",
		Skills:    []string{"Go"},
		JobScores: map[string]JobScore{"job-1": {Score: 80}},
	}

	clone := original.Clone()
	clone.JobScores["job-2"] = JobScore{Score: 55}
	clone.Skills[0] = "Rust"

	if _, ok := original.JobScores["job-2"]; ok {
		t.Fatal("clone mutated original job scores")
	}
	if original.Skills[0] != "Go" {
		t.Fatal("clone mutated original skills")
	}
}
