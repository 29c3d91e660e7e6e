package main

import (
	"testing"
	"time"

	"github.com/notabene-app/notabene/internal/common"
	"github.com/notabene-app/notabene/internal/engine"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := engineConfig()

	assert.Empty(t, cfg.InternalDomain)
	assert.InDelta(t, engine.DefaultDomainMatchWeight, cfg.Weights.DomainMatch, 1e-9)
	assert.InDelta(t, engine.DefaultAutoApplyThreshold, cfg.Thresholds.AutoApply, 1e-9)
	assert.Equal(t, engine.DefaultAITimeout, cfg.AITimeout)
}

func TestEngineConfigReadsClassificationKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("classification.internal_domain", "internal.co")
	viper.Set("classification.auto_apply_threshold", 0.95)
	viper.Set("classification.review_threshold", 0.6)
	viper.Set("classification.ai_timeout", "5s")
	viper.Set("classification.domain_weight", 0.9)
	viper.Set("classification.rule_weight", 0.7)
	viper.Set("classification.weak_signal_floor", 0.2)

	cfg := engineConfig()

	assert.Equal(t, "internal.co", cfg.InternalDomain)
	assert.InDelta(t, 0.95, cfg.Thresholds.AutoApply, 1e-9)
	assert.InDelta(t, 0.6, cfg.Thresholds.Review, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.InDelta(t, 0.9, cfg.Weights.DomainMatch, 1e-9)
	assert.InDelta(t, 0.7, cfg.Weights.RuleMatch, 1e-9)
	assert.InDelta(t, 0.2, cfg.Weights.WeakFloor, 1e-9)

	// Keys left unset keep their defaults.
	assert.InDelta(t, engine.DefaultClientKeywordWeight, cfg.Weights.ClientKeyword, 1e-9)
}

func TestEngineConfigCanZeroAWeight(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("classification.external_weight", 0.0)

	cfg := engineConfig()

	assert.Zero(t, cfg.Weights.ExternalMatch)
	assert.InDelta(t, engine.DefaultInternalMatchWeight, cfg.Weights.InternalMatch, 1e-9)
}

func TestCreateAIClassifierDisabledWithoutProvider(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	classifier, err := createAIClassifier()
	require.NoError(t, err)
	assert.Nil(t, classifier)
}

func TestCreateAIClassifierMissingKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "")

	viper.Set("llm.provider", "openai")

	_, err := createAIClassifier()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestCreateAIClassifierUnsupportedProvider(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("llm.provider", "palm")

	_, err := createAIClassifier()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
