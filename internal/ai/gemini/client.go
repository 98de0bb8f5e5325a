package gemini

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3

	// Quota errors advertising a retry delay longer than this are not worth
	// waiting out inside a scan.
	maxQuotaRetryDelay = 30 * time.Second
)

var (
	sleep = time.Sleep

	retryAfterRe = regexp.MustCompile(`retry after (\d+)`)
)

// chatSession is the part of a genai chat the generator needs.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// chatCreator builds chat sessions; satisfied by the genai client and by
// fakes in tests.
type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	client *genai.Client
}

func (g *genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return g.client.Chats.Create(ctx, model, config, history)
}

// Generator wraps the Google GenAI client to provide prompt-based scoring
// interactions with bounded retries on temporary API errors.
type Generator struct {
	client     *genai.Client
	chats      chatCreator
	model      string
	maxRetries int
	logger     *zap.Logger

	cacheMu  sync.RWMutex
	jobCache map[string]cachedJob
}

type cachedJob struct {
	name string
	hash string
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:     client,
		chats:      &genaiChats{client: client},
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// GenerateContent sends the message under the given system instruction and
// returns the first textual response. Temporary API errors are retried up to
// the configured limit.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	return g.generate(ctx, system, message, "")
}

// GenerateContentWithCache is GenerateContent reusing a previously uploaded
// cached content resource.
func (g *Generator) GenerateContentWithCache(ctx context.Context, system, message, cacheName string) (string, error) {
	return g.generate(ctx, system, message, strings.TrimSpace(cacheName))
}

func (g *Generator) generate(ctx context.Context, system, message, cacheName string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if cacheName != "" {
		config.CachedContent = cacheName
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		chat, err := g.chats.Create(ctx, g.model, config, nil)
		if err != nil {
			return "", fmt.Errorf("create chat session: %w", err)
		}

		resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
		if err == nil {
			return firstText(resp)
		}

		lastErr = err
		delay, retryable := retryDelay(err)
		if !retryable || attempt == g.maxRetries {
			break
		}

		g.logger.Debug("retrying gemini call after temporary error",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		sleep(delay)
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

// EnsureJobCache stores the job payload in a Gemini cached content resource so
// per-candidate calls for the same job reuse the uploaded context. Repeated
// calls with an unchanged payload return the existing resource name.
func (g *Generator) EnsureJobCache(ctx context.Context, jobID, displayName, payload string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return "", errors.New("job id is required")
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", errors.New("job payload must not be empty")
	}

	hashBytes := sha256.Sum256([]byte(payload))
	hash := fmt.Sprintf("%x", hashBytes[:])

	g.cacheMu.RLock()
	existing, ok := g.jobCache[jobID]
	g.cacheMu.RUnlock()
	if ok && existing.hash == hash && existing.name != "" {
		return existing.name, nil
	}

	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()

	if g.jobCache == nil {
		g.jobCache = make(map[string]cachedJob)
	}
	if existing, ok := g.jobCache[jobID]; ok && existing.hash == hash && existing.name != "" {
		return existing.name, nil
	}

	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = fmt.Sprintf("job-%s", jobID)
	}

	cached, err := g.client.Caches.Create(ctx, g.model, &genai.CreateCachedContentConfig{
		DisplayName: displayName,
		TTL:         24 * time.Hour,
		Contents: []*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: payload}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("create job cache: %w", err)
	}

	name := strings.TrimSpace(cached.Name)
	if name == "" {
		return "", errors.New("gemini api returned empty cache name")
	}

	g.jobCache[jobID] = cachedJob{name: name, hash: hash}
	return name, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned empty response")
	}

	var builder strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// retryDelay decides whether an error is worth retrying and how long to wait
// before the next attempt. Server-side errors get a flat pause; quota errors
// honor the advertised delay unless it is too long.
func retryDelay(err error) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch apiErr.Code {
	case 500, 503:
		return time.Second, true
	case 429:
		delay := quotaRetryDelay(apiErr.Message)
		if delay <= 0 || delay > maxQuotaRetryDelay {
			return 0, false
		}
		return delay, true
	default:
		return 0, false
	}
}

func quotaRetryDelay(message string) time.Duration {
	matches := retryAfterRe.FindStringSubmatch(strings.ToLower(message))
	if len(matches) != 2 {
		return 0
	}
	seconds, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
