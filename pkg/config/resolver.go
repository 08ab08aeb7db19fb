package config

import (
	"strings"
	"time"
)

const (
	EnvProduction = "production"

	defaultTimeoutMs                 = 3000
	defaultConfidenceBypassThreshold = 0.85
	defaultHarassmentScoreThreshold  = 0.70
	defaultToxicityThreshold         = 0.75
)

// PipelineConfig is the immutable configuration snapshot the orchestrator
// and its layers read. It is resolved once per process lifetime; nothing
// reads raw environment values at request time.
type PipelineConfig struct {
	Environment               string
	FailOpen                  bool
	Timeout                   time.Duration
	ConfidenceBypassThreshold float64
	HarassmentScoreThreshold  float64
	ToxicityThreshold         float64

	ClassifierEnabled bool
	SecondaryEnabled  bool

	BlockSocialHandles     bool
	AllowNameIntroductions bool
}

// IsProduction reports whether the resolved deployment environment is
// production.
func (c PipelineConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Resolve turns the raw moderation configuration into a PipelineConfig,
// applying defaults and the production fail-open override. The override is
// a resolution-time rule: when the environment is production the resolved
// FailOpen is already false before the orchestrator ever reads it.
func Resolve(cfg ModerationConfig) PipelineConfig {
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))

	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}

	resolved := PipelineConfig{
		Environment:               env,
		FailOpen:                  cfg.FailOpen,
		Timeout:                   time.Duration(timeoutMs) * time.Millisecond,
		ConfidenceBypassThreshold: cfg.ConfidenceBypassThreshold,
		HarassmentScoreThreshold:  cfg.HarassmentScoreThreshold,
		ToxicityThreshold:         cfg.ToxicityThreshold,
		ClassifierEnabled:         strings.TrimSpace(cfg.Classifier.APIKey) != "",
		SecondaryEnabled:          cfg.Toxicity.Enabled && strings.TrimSpace(cfg.Toxicity.Token) != "",
		BlockSocialHandles:        cfg.PII.BlockSocialHandles,
		AllowNameIntroductions:    cfg.PII.AllowNameIntroductions,
	}

	if resolved.ConfidenceBypassThreshold <= 0 {
		resolved.ConfidenceBypassThreshold = defaultConfidenceBypassThreshold
	}
	if resolved.HarassmentScoreThreshold <= 0 {
		resolved.HarassmentScoreThreshold = defaultHarassmentScoreThreshold
	}
	if resolved.ToxicityThreshold <= 0 {
		resolved.ToxicityThreshold = defaultToxicityThreshold
	}

	if resolved.Environment == EnvProduction {
		resolved.FailOpen = false
	}

	return resolved
}
