// Package scan drives the screening pipeline: heuristic prescreening of the
// whole pool, oracle analysis of the top candidates up to a budget, tiering
// of the results and write-through caching.
package scan

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/fit-screener/internal/ai"
	"github.com/spigell/fit-screener/internal/cache"
	"github.com/spigell/fit-screener/internal/candidate"
	"github.com/spigell/fit-screener/internal/logger"
	"github.com/spigell/fit-screener/internal/match"
	"github.com/spigell/fit-screener/internal/utils"
)

const (
	// DefaultBudget is the default number of candidates routed through the
	// oracle per scan.
	DefaultBudget = 10

	// defaultOracleDelay is the courtesy pause after each oracle call, to
	// stay clear of provider rate limits.
	defaultOracleDelay = 500 * time.Millisecond
	// defaultPacingDelay paces heuristic-only steps so progress consumers
	// can keep up. It has no semantic purpose.
	defaultPacingDelay = 100 * time.Millisecond
)

// Progress describes one step of a running scan. Score is nil on the event
// emitted before a candidate is analyzed and set on the event that carries
// the outcome. Oracle marks steps that go through the external analyzer.
type Progress struct {
	Current       int
	Total         int
	CandidateName string
	Score         *int
	Oracle        bool
}

// ProgressFunc receives progress events. It may be nil.
type ProgressFunc func(Progress)

// Deps aggregates the scanner's collaborators. Oracle may be nil, in which
// case every candidate keeps its heuristic score.
type Deps struct {
	Oracle ai.Scorer
	Cache  *cache.Cache
	Logger *zap.Logger
}

// Options tune a scanner. Zero values select the defaults.
type Options struct {
	// Budget caps how many candidates are submitted to the oracle. It is
	// clamped to [0, pool size] at scan time; negative means "use default".
	Budget int
	// OracleDelay overrides the pause after each successful oracle call.
	OracleDelay time.Duration
	// PacingDelay overrides the pause after each heuristic-scored step.
	PacingDelay time.Duration
	// NoDelays disables both pauses, for tests and non-interactive runs.
	NoDelays bool
}

type Scanner struct {
	oracle ai.Scorer
	cache  *cache.Cache
	logger *zap.Logger

	budget      int
	oracleDelay time.Duration
	pacingDelay time.Duration

	group singleflight.Group
}

func New(deps Deps, opts Options) *Scanner {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	oracleDelay := opts.OracleDelay
	if oracleDelay <= 0 {
		oracleDelay = defaultOracleDelay
	}
	pacingDelay := opts.PacingDelay
	if pacingDelay <= 0 {
		pacingDelay = defaultPacingDelay
	}
	if opts.NoDelays {
		oracleDelay = 0
		pacingDelay = 0
	}

	return &Scanner{
		oracle:      deps.Oracle,
		cache:       deps.Cache,
		logger:      log,
		budget:      budget,
		oracleDelay: oracleDelay,
		pacingDelay: pacingDelay,
	}
}

// Scan screens the pool against the job and returns the tiered result set.
// A fresh cached result short-circuits the whole pipeline with no oracle
// calls and no progress events. Concurrent scans of the same job collapse
// into a single execution.
//
// The only fatal condition is context cancellation; oracle and cache
// failures degrade per candidate or per operation. A cancelled scan is
// discarded, never cached.
func (s *Scanner) Scan(ctx context.Context, job *candidate.Job, pool *candidate.Pool, onProgress ProgressFunc) (*match.ResultSet, error) {
	fingerprint := cache.Fingerprint(job)

	result, err, _ := s.group.Do(fingerprint, func() (any, error) {
		return s.scan(ctx, job, pool, fingerprint, onProgress)
	})
	if err != nil {
		return nil, err
	}

	return result.(*match.ResultSet), nil
}

func (s *Scanner) scan(ctx context.Context, job *candidate.Job, pool *candidate.Pool, fingerprint string, onProgress ProgressFunc) (*match.ResultSet, error) {
	log := logger.WithFields(s.logger, logger.ScanFields(uuid.NewString(), job.ID)...)

	if entry, ok := s.cache.Get(ctx, fingerprint); ok {
		log.Info("returning cached scan result",
			zap.Int("candidates", entry.Results.Total()),
			zap.Int("oracle_calls", entry.OracleCalls),
			zap.Time("created_at", entry.CreatedAt),
		)
		return entry.Results, nil
	}

	prescreened := s.prescreen(job, pool)
	budget := s.clampBudget(pool.Len())
	total := len(prescreened)

	log.Info("starting scan",
		zap.String("job_title", job.Title),
		zap.Int("pool_size", total),
		zap.Int("budget", budget),
	)

	results := &match.ResultSet{}
	oracleCalls := 0

	for i, pre := range prescreened {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		useOracle := i < budget && s.oracle != nil

		emit(onProgress, Progress{
			Current:       i + 1,
			Total:         total,
			CandidateName: pre.profile.Name,
			Oracle:        useOracle,
		})

		scored, success := s.scoreCandidate(ctx, log, job, pre, useOracle)
		if success {
			oracleCalls++
		}

		emit(onProgress, Progress{
			Current:       i + 1,
			Total:         total,
			CandidateName: pre.profile.Name,
			Score:         &scored.Score,
			Oracle:        scored.Oracle,
		})

		delay := s.pacingDelay
		if success {
			delay = s.oracleDelay
		}
		if err := utils.WaitFor(ctx, delay); err != nil {
			return nil, err
		}

		results.Add(scored)
	}

	// Candidates arrive in descending heuristic order, but oracle scores can
	// reorder within a tier.
	results.Sort()

	if err := s.cache.Put(ctx, fingerprint, results, oracleCalls); err != nil {
		log.Warn("caching scan result failed", zap.Error(err))
	}

	log.Info("scan finished",
		zap.Int("candidates", results.Total()),
		zap.Int("oracle_calls", oracleCalls),
	)

	return results, nil
}

type prescreenedCandidate struct {
	profile        *candidate.Profile
	heuristicScore int
}

// prescreen runs the quick scorer over the whole pool and orders candidates
// by heuristic score descending, pool order breaking ties. This ordering
// decides who gets an oracle call.
func (s *Scanner) prescreen(job *candidate.Job, pool *candidate.Pool) []prescreenedCandidate {
	prescreened := make([]prescreenedCandidate, 0, pool.Len())
	for _, profile := range pool.Items {
		prescreened = append(prescreened, prescreenedCandidate{
			profile:        profile,
			heuristicScore: match.QuickScore(job, profile),
		})
	}

	sort.SliceStable(prescreened, func(i, j int) bool {
		return prescreened[i].heuristicScore > prescreened[j].heuristicScore
	})

	return prescreened
}

// scoreCandidate produces the final score for one candidate. The second
// return reports a successful oracle call; a fallback does not count.
func (s *Scanner) scoreCandidate(ctx context.Context, log *zap.Logger, job *candidate.Job, pre prescreenedCandidate, useOracle bool) (*match.Scored, bool) {
	if useOracle {
		assessment, err := s.oracle.Evaluate(ctx, job, pre.profile)
		if err == nil {
			return &match.Scored{
				Profile:   pre.profile,
				Score:     clampScore(assessment.Score),
				Rationale: assessment.Rationale,
				Oracle:    true,
			}, true
		}

		log.Warn("oracle scoring failed, falling back to heuristic score",
			zap.String("candidate", pre.profile.Name),
			zap.Int("heuristic_score", pre.heuristicScore),
			zap.Error(err),
		)
	}

	return &match.Scored{
		Profile:   pre.profile,
		Score:     pre.heuristicScore,
		Rationale: match.HeuristicRationale(job, pre.profile),
	}, false
}

func (s *Scanner) clampBudget(poolSize int) int {
	budget := s.budget
	if budget < 0 {
		budget = 0
	}
	if budget > poolSize {
		budget = poolSize
	}
	return budget
}

func clampScore(score float64) int {
	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func emit(onProgress ProgressFunc, p Progress) {
	if onProgress == nil {
		return
	}
	onProgress(p)
}
