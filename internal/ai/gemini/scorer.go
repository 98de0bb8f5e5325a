package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/ai"
	"github.com/spigell/fit-screener/internal/candidate"
	"github.com/spigell/fit-screener/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200

	systemInstruction = "You are a technical recruiter scoring how well a candidate fits a job. " +
		"Score from 0 (no fit) to 100 (perfect fit). " +
		"Respond with a single JSON object matching the requested schema and nothing else."
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// jobCacher is implemented by generators that can pin the job payload in a
// provider-side content cache.
type jobCacher interface {
	GenerateContentWithCache(ctx context.Context, system, message, cacheName string) (string, error)
	EnsureJobCache(ctx context.Context, jobID, displayName, payload string) (string, error)
}

// Scorer evaluates candidate fit with Gemini. It implements ai.Scorer.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Evaluate(ctx context.Context, job *candidate.Job, profile *candidate.Profile) (*ai.Assessment, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}
	if profile == nil {
		return nil, fmt.Errorf("candidate profile is required")
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	candidateJSON, err := json.MarshalIndent(payloadProfile(profile), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate payload: %w", err)
	}

	prompt := buildPrompt(string(jobJSON), string(candidateJSON))

	s.logger.Debug("gemini scoring request",
		zap.String("job_id", job.ID),
		zap.String("candidate", profile.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generate(ctx, job, string(jobJSON), prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini scoring response",
		zap.String("job_id", job.ID),
		zap.String("candidate", profile.Name),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

// generate prefers a provider-side cached copy of the job payload when the
// generator supports it, falling back to a plain call when pinning fails.
func (s *Scorer) generate(ctx context.Context, job *candidate.Job, jobPayload, prompt string) (string, error) {
	cacher, ok := s.generator.(jobCacher)
	if !ok || job.ID == "" {
		return s.generator.GenerateContent(ctx, systemInstruction, prompt)
	}

	cacheName, err := cacher.EnsureJobCache(ctx, job.ID, job.Title, jobPayload)
	if err != nil {
		s.logger.Debug("job content cache unavailable, calling without it",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return s.generator.GenerateContent(ctx, systemInstruction, prompt)
	}

	return cacher.GenerateContentWithCache(ctx, systemInstruction, prompt, cacheName)
}

// payloadProfile strips fields that could bias or bloat the prompt: the
// source filename and any scores the candidate carries for other jobs.
func payloadProfile(profile *candidate.Profile) map[string]any {
	return map[string]any{
		"name":             profile.Name,
		"skills":           profile.Skills,
		"years_experience": profile.YearsExperience,
		"summary":          profile.Summary,
	}
}

func buildPrompt(jobJSON, candidateJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB_JSON}}\n\nCandidate:\n{{CANDIDATE_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{JOB_JSON}}", jobJSON)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_JSON}}", candidateJSON)
	return prompt
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("gemini response has no usable score: %s", utils.TruncateForLog(raw, defaultMaxLogLength))
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &ai.Assessment{
		Score:     score,
		Rationale: coerceString(data["rationale"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
