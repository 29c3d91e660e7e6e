package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/notabene-app/notabene/internal/common"
	"github.com/notabene-app/notabene/internal/config"
	"github.com/notabene-app/notabene/internal/engine"
	"github.com/notabene-app/notabene/internal/llm"
	"github.com/notabene-app/notabene/internal/service"
	"github.com/notabene-app/notabene/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/notabene/notabene.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// engineConfig builds the engine configuration from viper settings.
func engineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.InternalDomain = viper.GetString("classification.internal_domain")

	if v := viper.GetFloat64("classification.auto_apply_threshold"); v > 0 {
		cfg.Thresholds.AutoApply = v
	}
	if v := viper.GetFloat64("classification.review_threshold"); v > 0 {
		cfg.Thresholds.Review = v
	}
	if v := viper.GetDuration("classification.ai_timeout"); v > 0 {
		cfg.AITimeout = v
	}

	// Weights are deployment-tunable; IsSet (rather than > 0) so a
	// signal can be deliberately zeroed out.
	weightKeys := map[string]*float64{
		"classification.domain_weight":          &cfg.Weights.DomainMatch,
		"classification.project_bonus":          &cfg.Weights.ProjectBonus,
		"classification.project_keyword_weight": &cfg.Weights.ProjectKeyword,
		"classification.client_keyword_weight":  &cfg.Weights.ClientKeyword,
		"classification.rule_weight":            &cfg.Weights.RuleMatch,
		"classification.internal_weight":        &cfg.Weights.InternalMatch,
		"classification.external_weight":        &cfg.Weights.ExternalMatch,
		"classification.weak_signal_floor":      &cfg.Weights.WeakFloor,
	}
	for key, dst := range weightKeys {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}

	return cfg
}

// createAIClassifier creates an LLM classifier from configuration, or
// nil when no provider is configured (the engine works without it).
func createAIClassifier() (*llm.Classifier, error) {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		return nil, nil
	}

	cfg := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60
	}

	switch provider {
	case "openai":
		apiKey := viper.GetString("llm.openai_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, common.NewUserError("OpenAI API key not found in config or OPENAI_API_KEY environment variable", common.ErrMissingConfig)
		}
		cfg.APIKey = apiKey
	case "anthropic":
		apiKey := viper.GetString("llm.anthropic_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, common.NewUserError("Anthropic API key not found in config or ANTHROPIC_API_KEY environment variable", common.ErrMissingConfig)
		}
		cfg.APIKey = apiKey
	default:
		return nil, common.NewUserError(fmt.Sprintf("unsupported LLM provider: %s", provider), common.ErrInvalidConfig)
	}

	return llm.NewClassifier(cfg, nil)
}

// buildEngine wires storage and the optional AI fallback into a
// classification engine.
func buildEngine(store service.Storage) (*engine.Engine, *llm.Classifier, error) {
	classifier, err := createAIClassifier()
	if err != nil {
		return nil, nil, err
	}

	// A nil *Classifier must not become a non-nil interface value.
	var ai engine.AIClassifier
	if classifier != nil {
		ai = classifier
	}

	return engine.New(store, ai, store, engineConfig()), classifier, nil
}
