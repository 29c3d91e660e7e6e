package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notabene-app/notabene/internal/common"
	"github.com/notabene-app/notabene/internal/engine"
	"github.com/notabene-app/notabene/internal/model"
	"github.com/notabene-app/notabene/internal/service"
)

// Classifier implements engine.AIClassifier using LLM APIs.
type Classifier struct {
	client      Client
	cache       *suggestionCache
	rateLimiter *rateLimiter
	logger      *slog.Logger
	retryOpts   service.RetryOptions
}

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// NewClassifier creates a new LLM-backed meeting classifier.
func NewClassifier(cfg Config, logger *slog.Logger) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		client:      client,
		cache:       newSuggestionCache(cfg.CacheTTL),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger:      logger,
		retryOpts:   retryOpts,
	}, nil
}

var _ engine.AIClassifier = (*Classifier)(nil)

// ClassifyMeeting asks the LLM for a classification of the meeting.
// Results are cached per meeting fingerprint so reclassification of the
// same note does not burn API calls.
func (c *Classifier) ClassifyMeeting(ctx context.Context, facts model.MeetingFacts) (engine.AIResult, error) {
	key := factsFingerprint(facts)
	if suggestion, found := c.cache.get(key); found {
		c.logger.Debug("cache hit for meeting", "title", facts.Title)
		return engine.AIResult{
			Type:       suggestion.Type,
			Confidence: suggestion.Confidence,
			Reasoning:  suggestion.Reasoning,
		}, nil
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return engine.AIResult{}, fmt.Errorf("rate limit error: %w", err)
	}

	prompt := buildPrompt(facts)

	var response ClassificationResponse
	err := common.WithRetry(ctx, func() error {
		var classifyErr error
		response, classifyErr = c.client.Classify(ctx, prompt)
		if classifyErr != nil {
			c.logger.Warn("LLM classification attempt failed",
				"title", facts.Title,
				"error", classifyErr)
			return &common.RetryableError{Err: classifyErr, Retryable: true}
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return engine.AIResult{}, fmt.Errorf("AI classification failed: %w", err)
	}

	result, err := toAIResult(response)
	if err != nil {
		return engine.AIResult{}, err
	}

	c.cache.set(key, service.AISuggestion{
		Type:       result.Type,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	})

	c.logger.Info("meeting classified by AI",
		"title", facts.Title,
		"type", result.Type,
		"confidence", result.Confidence)

	return result, nil
}

// toAIResult validates the provider response against the closed type
// set and confidence range.
func toAIResult(resp ClassificationResponse) (engine.AIResult, error) {
	t := model.ClassificationType(strings.ToLower(strings.TrimSpace(resp.Type)))
	switch t {
	case model.TypeClient, model.TypeInternal, model.TypeExternal, model.TypePersonal, model.TypeUncategorized:
	default:
		return engine.AIResult{}, fmt.Errorf("invalid classification type from LLM: %q", resp.Type)
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return engine.AIResult{}, fmt.Errorf("confidence out of range from LLM: %.2f", resp.Confidence)
	}
	return engine.AIResult{Type: t, Confidence: resp.Confidence, Reasoning: resp.Reasoning}, nil
}

// factsFingerprint hashes the classification-relevant meeting fields
// into a cache key.
func factsFingerprint(facts model.MeetingFacts) string {
	h := sha256.New()
	h.Write([]byte(facts.Title))
	h.Write([]byte{0})
	h.Write([]byte(facts.Description))
	h.Write([]byte{0})
	h.Write([]byte(facts.Organizer))
	for _, email := range facts.AttendeeEmails {
		h.Write([]byte{0})
		h.Write([]byte(email))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// buildPrompt creates the classification prompt for one meeting.
func buildPrompt(facts model.MeetingFacts) string {
	details := fmt.Sprintf("Title: %s", facts.Title)
	if facts.Description != "" {
		details += fmt.Sprintf("\nDescription: %s", facts.Description)
	}
	if facts.Organizer != "" {
		details += fmt.Sprintf("\nOrganizer: %s", facts.Organizer)
	}
	if len(facts.AttendeeEmails) > 0 {
		details += fmt.Sprintf("\nAttendees: %s", strings.Join(facts.AttendeeEmails, ", "))
	}

	return fmt.Sprintf(`Classify this meeting into one of: client, internal, external, personal.

Meeting Details:
%s

Guidelines:
- "client" means the meeting concerns work for a specific client organization
- "internal" means a company-internal meeting (all participants from one organization)
- "external" means outside parties are involved but no client relationship is evident
- "personal" means a non-work meeting

Respond with ONLY a JSON object in this exact shape:
{"type": "<client|internal|external|personal>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}`,
		details)
}

// Close stops background goroutines and cleans up resources.
func (c *Classifier) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.rateLimiter != nil {
		c.rateLimiter.Close()
	}
	return nil
}
