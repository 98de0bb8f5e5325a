package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/candidate"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func testScorerJob() *candidate.Job {
	return &candidate.Job{
		ID:             "job-1",
		Title:          "Go Developer",
		Description:    "Build backend services",
		RequiredSkills: []string{"Go"},
	}
}

func testScorerProfile() *candidate.Profile {
	return &candidate.Profile{
		Name:            "Jane",
		Skills:          []string{"Go", "Kubernetes"},
		YearsExperience: 6,
		Summary:         "golang services in production",
		SourceFile:      "jane.pdf",
	}
}

func TestScorerEvaluate(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 87, "rationale": "Strong required-skill coverage."}`}
	scorer := NewScorer(stub, 0, zap.NewNop())

	assessment, err := scorer.Evaluate(context.Background(), testScorerJob(), testScorerProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Score != 87 {
		t.Fatalf("expected score 87, got %v", assessment.Score)
	}
	if assessment.Rationale != "Strong required-skill coverage." {
		t.Fatalf("unexpected rationale: %q", assessment.Rationale)
	}
	if assessment.Raw == "" {
		t.Fatal("expected raw response to be kept")
	}

	if stub.lastSystem == "" {
		t.Fatal("expected a system instruction to be sent")
	}
	if !strings.Contains(stub.lastPrompt, `"Go Developer"`) {
		t.Fatalf("expected job payload in prompt, got: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, `"Jane"`) {
		t.Fatalf("expected candidate payload in prompt, got: %s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, "jane.pdf") {
		t.Fatalf("expected source filename to be stripped from prompt, got: %s", stub.lastPrompt)
	}
}

func TestScorerEvaluatePropagatesGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	scorer := NewScorer(stub, 0, zap.NewNop())

	if _, err := scorer.Evaluate(context.Background(), testScorerJob(), testScorerProfile()); err == nil {
		t.Fatal("expected generator error to propagate")
	}
}

func TestScorerEvaluateRequiresInputs(t *testing.T) {
	scorer := NewScorer(&stubGenerator{}, 0, zap.NewNop())

	if _, err := scorer.Evaluate(context.Background(), nil, testScorerProfile()); err == nil {
		t.Fatal("expected error for nil job")
	}
	if _, err := scorer.Evaluate(context.Background(), testScorerJob(), nil); err == nil {
		t.Fatal("expected error for nil profile")
	}
}

func TestParseResponseHandlesCodeBlock(t *testing.T) {
	raw := "```json\n{\"score\": \"73\", \"rationale\": \"Looks good\"}\n```"
	assessment, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Score != 73 {
		t.Fatalf("expected coerced score 73, got %v", assessment.Score)
	}
	if assessment.Rationale != "Looks good" {
		t.Fatalf("unexpected rationale: %q", assessment.Rationale)
	}
}

func TestParseResponseClampsScore(t *testing.T) {
	tests := []struct {
		raw    string
		expect float64
	}{
		{`{"score": 140, "rationale": "x"}`, 100},
		{`{"score": -5, "rationale": "x"}`, 0},
	}

	for _, tt := range tests {
		assessment, err := parseResponse(tt.raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assessment.Score != tt.expect {
			t.Fatalf("expected clamped score %v, got %v", tt.expect, assessment.Score)
		}
	}
}

func TestParseResponseRejectsMissingScore(t *testing.T) {
	if _, err := parseResponse(`{"rationale": "no score here"}`); err == nil {
		t.Fatal("expected error for missing score")
	}
	if _, err := parseResponse("plain text, not json"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}
