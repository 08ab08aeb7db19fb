package toxicity

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

const scorePath = "/v1/toxicity"

type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	Threshold float64
}

type scoreRequest struct {
	Input []string `json:"input"`
}

type scoreResponse struct {
	CategoryScores map[string]float64 `json:"category_scores"`
}

// HTTPAnalyzer calls the independent toxicity-scoring service. It is a
// supplementary signal: callers treat its errors as recoverable.
type HTTPAnalyzer struct {
	client httpx.Client
	logger *logrus.Logger
	cfg    Config
}

func NewHTTPAnalyzer(logger *logrus.Logger, client httpx.Client, cfg Config) *HTTPAnalyzer {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPAnalyzer{
		client: client,
		logger: logger,
		cfg:    cfg,
	}
}

// Analyze implements moderation.ToxicityAnalyzer.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, text string) (moderation.CheckResult, error) {
	if strings.TrimSpace(a.cfg.Token) == "" {
		return moderation.CheckResult{}, &moderation.LayerUnavailableError{
			Layer:  moderation.LayerSecondary,
			Reason: "token not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(scoreRequest{Input: []string{text}})
	if err != nil {
		return moderation.CheckResult{}, fmt.Errorf("failed to marshal toxicity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+scorePath, bytes.NewReader(body))
	if err != nil {
		return moderation.CheckResult{}, fmt.Errorf("failed to create toxicity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", a.cfg.Token)

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return moderation.CheckResult{}, &moderation.LayerTimeoutError{
				Layer:   moderation.LayerSecondary,
				Timeout: a.cfg.Timeout,
			}
		}
		return moderation.CheckResult{}, &moderation.LayerTransportError{
			Layer: moderation.LayerSecondary,
			Err:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return moderation.CheckResult{}, &moderation.LayerTransportError{
			Layer: moderation.LayerSecondary,
			Err:   err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.WithField("status_code", resp.StatusCode).Error("toxicity service returned non-200 status")
		return moderation.CheckResult{}, &moderation.LayerTransportError{
			Layer: moderation.LayerSecondary,
			Err:   fmt.Errorf("toxicity service returned status %d", resp.StatusCode),
		}
	}

	var parsed scoreResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return moderation.CheckResult{}, &moderation.LayerTransportError{
			Layer: moderation.LayerSecondary,
			Err:   fmt.Errorf("invalid toxicity response: %w", err),
		}
	}

	var (
		topCategory string
		topScore    float64
	)
	for category, score := range parsed.CategoryScores {
		if score > topScore {
			topCategory = category
			topScore = score
		}
	}

	if topScore >= a.cfg.Threshold {
		return moderation.CheckResult{
			Allowed:  false,
			Reason:   "content scored as toxic",
			Category: topCategory,
		}, nil
	}

	return moderation.CheckResult{Allowed: true}, nil
}
