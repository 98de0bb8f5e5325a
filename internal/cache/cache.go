// Package cache maps a deterministic fingerprint of a job to a previously
// computed tiered result set, with time-based invalidation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/candidate"
	"github.com/spigell/fit-screener/internal/match"
	"github.com/spigell/fit-screener/internal/store"
)

const (
	// DefaultTTL is how long a cached result set stays usable.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "scan:result:"

	// descriptionKeyLength bounds how much of the description feeds the
	// fingerprint. Edits past this point do not change the cache key; this
	// is a known, accepted limitation.
	descriptionKeyLength = 100
)

// Entry is a cached scan outcome: the tiered result set, when it was
// computed, and how many candidates were scored by the oracle (successes
// only, kept for accounting).
type Entry struct {
	Results     *match.ResultSet `json:"results"`
	CreatedAt   time.Time        `json:"created_at"`
	OracleCalls int              `json:"oracle_calls"`
}

// Cache stores scan results in a key-value store with a TTL applied on read.
// Stale entries behave like misses and are left for the store's own
// reclamation; read failures and corrupt entries also degrade to misses.
type Cache struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func New(kv store.KV, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		kv:     kv,
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
	}
}

// Fingerprint derives the cache key from job identity: the title, the
// required skills (lowercased and sorted, so ordering and casing do not
// matter), and the first 100 characters of the description.
func Fingerprint(job *candidate.Job) string {
	skills := make([]string, 0, len(job.RequiredSkills))
	for _, skill := range job.RequiredSkills {
		skills = append(skills, strings.ToLower(strings.TrimSpace(skill)))
	}
	sort.Strings(skills)

	description := []rune(job.Description)
	if len(description) > descriptionKeyLength {
		description = description[:descriptionKeyLength]
	}

	payload := strings.Join([]string{
		job.Title,
		strings.Join(skills, ","),
		string(description),
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%s%x", keyPrefix, sum)
}

// Get returns a usable cached entry for the fingerprint, or false when the
// entry is absent, stale, unreadable or corrupt.
func (c *Cache) Get(ctx context.Context, fingerprint string) (*Entry, bool) {
	raw, ok, err := c.kv.Get(ctx, fingerprint)
	if err != nil {
		c.logger.Warn("cache read failed, treating as miss",
			zap.String("fingerprint", fingerprint),
			zap.Error(err),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("corrupt cache entry, treating as miss",
			zap.String("fingerprint", fingerprint),
			zap.Error(err),
		)
		return nil, false
	}

	if age := c.now().Sub(entry.CreatedAt); age >= c.ttl {
		c.logger.Debug("cache entry is stale",
			zap.String("fingerprint", fingerprint),
			zap.Duration("age", age),
		)
		return nil, false
	}

	return &entry, true
}

// Put writes a freshly computed result set through to the store. Errors are
// returned so the caller can log and swallow them; a failed write never
// affects the scan outcome.
func (c *Cache) Put(ctx context.Context, fingerprint string, results *match.ResultSet, oracleCalls int) error {
	entry := Entry{
		Results:     results,
		CreatedAt:   c.now().UTC(),
		OracleCalls: oracleCalls,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if err := c.kv.Set(ctx, fingerprint, string(raw)); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
