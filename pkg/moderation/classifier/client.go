package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/modguard/pipeline/pkg/infra/httpx"
	"github.com/modguard/pipeline/pkg/moderation"
)

// DefaultEndpoint points at the OpenAI moderation API; the classifier is a
// pluggable external dependency and any service speaking the same contract
// can be configured instead.
const DefaultEndpoint = "https://api.openai.com/v1/moderations"

const moderationModel = "omni-moderation-latest"

type Config struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	Thresholds map[string]float64
}

// DefaultThresholds builds the per-category score thresholds around the
// configured harassment threshold. Self-harm and threat categories trip at
// a lower score on purpose.
func DefaultThresholds(harassment float64) map[string]float64 {
	return map[string]float64{
		"harassment":             harassment,
		"harassment/threatening": harassment * 0.8,
		"hate":                   harassment,
		"hate/threatening":       harassment * 0.8,
		"violence":               harassment,
		"violence/graphic":       harassment,
		"sexual":                 harassment,
		"sexual/minors":          harassment * 0.5,
		"self-harm":              harassment * 0.8,
		"self-harm/intent":       harassment * 0.5,
		"self-harm/instructions": harassment * 0.5,
	}
}

type moderationRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model,omitempty"`
}

type moderationResponse struct {
	Results []moderationResult `json:"results"`
}

type moderationResult struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// HTTPClient calls the remote classification service. Every call carries a
// deadline derived from the configured timeout and runs behind a circuit
// breaker.
type HTTPClient struct {
	client  httpx.Client
	breaker httpx.CircuitBreaker
	logger  *logrus.Logger
	cfg     Config
}

func NewHTTPClient(
	logger *logrus.Logger,
	client httpx.Client,
	breaker httpx.CircuitBreaker,
	cfg Config,
) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &HTTPClient{
		client:  client,
		breaker: breaker,
		logger:  logger,
		cfg:     cfg,
	}
}

// Classify implements moderation.Classifier. Missing credential, timeout
// and transport failures surface as the typed layer errors; the caller
// must not treat any of them as an implicit allow.
func (c *HTTPClient) Classify(ctx context.Context, text string) (moderation.ClassifierVerdict, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return moderation.ClassifierVerdict{}, &moderation.LayerUnavailableError{
			Layer:  moderation.LayerClassifier,
			Reason: "api credential not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var verdict moderation.ClassifierVerdict
	err := c.breaker.Execute(func() error {
		var execErr error
		verdict, execErr = c.classify(ctx, text)
		return execErr
	})
	if err != nil {
		return moderation.ClassifierVerdict{}, c.mapError(err)
	}
	return verdict, nil
}

func (c *HTTPClient) classify(ctx context.Context, text string) (moderation.ClassifierVerdict, error) {
	body, err := json.Marshal(moderationRequest{
		Input: []string{text},
		Model: moderationModel,
	})
	if err != nil {
		return moderation.ClassifierVerdict{}, fmt.Errorf("failed to marshal classification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return moderation.ClassifierVerdict{}, fmt.Errorf("failed to create classification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).Error("classification request failed")
		}
		return moderation.ClassifierVerdict{}, fmt.Errorf("failed to call classifier: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return moderation.ClassifierVerdict{}, fmt.Errorf("failed to read classifier response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithField("status_code", resp.StatusCode).Error("classifier returned non-2xx status")
		return moderation.ClassifierVerdict{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var parsed moderationResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return moderation.ClassifierVerdict{}, fmt.Errorf("invalid classifier response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return moderation.ClassifierVerdict{}, fmt.Errorf("classifier returned no results")
	}

	return c.toVerdict(parsed.Results[0]), nil
}

// toVerdict reduces per-category scores to a single decision. Confidence
// is the top blocked-category score when blocking, or how far the highest
// score sits below its threshold when allowing.
func (c *HTTPClient) toVerdict(result moderationResult) moderation.ClassifierVerdict {
	var (
		topCategory string
		topScore    float64
		blocked     bool
	)

	for category, score := range result.CategoryScores {
		threshold, ok := c.cfg.Thresholds[category]
		if !ok {
			continue
		}
		exceeded := score >= threshold
		if exceeded && (!blocked || score > topScore) {
			blocked = true
			topCategory = category
			topScore = score
		}
		if !blocked && score > topScore {
			topCategory = category
			topScore = score
		}
	}

	if blocked || result.Flagged {
		category := topCategory
		if category == "" {
			category = "flagged"
		}
		confidence := topScore
		if confidence == 0 {
			confidence = 1
		}
		return moderation.ClassifierVerdict{
			Allowed:    false,
			Category:   category,
			Confidence: confidence,
			Reason:     "content flagged by classification service",
		}
	}

	return moderation.ClassifierVerdict{
		Allowed:    true,
		Category:   "clean",
		Confidence: 1 - topScore,
	}
}

func (c *HTTPClient) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &moderation.LayerTimeoutError{
			Layer:   moderation.LayerClassifier,
			Timeout: c.cfg.Timeout,
		}
	}
	return &moderation.LayerTransportError{
		Layer: moderation.LayerClassifier,
		Err:   err,
	}
}
