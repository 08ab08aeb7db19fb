package moderation

import "context"

// Layer identifies the pipeline stage that produced the final decision.
type Layer string

const (
	LayerNone       Layer = "none"
	LayerBlocklist  Layer = "blocklist"
	LayerLocal      Layer = "local"
	LayerClassifier Layer = "classifier"
	LayerSecondary  Layer = "secondary"
)

// Request is one piece of candidate text submitted for moderation.
// It is never mutated after construction.
type Request struct {
	Text    string         `json:"text"`
	Context RequestContext `json:"context,omitempty"`
}

type RequestContext struct {
	Locale string `json:"locale,omitempty"`
	Author string `json:"author,omitempty"`
}

// Telemetry describes how a decision was reached.
type Telemetry struct {
	RequestID  string `json:"requestId"`
	DurationMs int64  `json:"durationMs"`
	Layer      Layer  `json:"layer"`
	Category   string `json:"category,omitempty"`
}

// Result is the final moderation decision. Reason never echoes the
// offending content.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	Telemetry Telemetry `json:"telemetry"`
}

// CheckResult is the outcome of a single deterministic layer.
type CheckResult struct {
	Allowed  bool
	Reason   string
	Category string
}

// ClassifierVerdict is the outcome of the remote content classifier.
type ClassifierVerdict struct {
	Allowed    bool
	Category   string
	Confidence float64
	Reason     string
}

// BlocklistChecker matches text against the operator-managed blocklist.
type BlocklistChecker interface {
	Check(ctx context.Context, text string) (CheckResult, error)
}

// HeuristicChecker runs local, in-process pattern checks. No I/O.
type HeuristicChecker interface {
	Check(text string) (CheckResult, error)
}

// Classifier calls the remote content-classification service.
type Classifier interface {
	Classify(ctx context.Context, text string) (ClassifierVerdict, error)
}

// ToxicityAnalyzer calls the independent toxicity-scoring service used
// as a second opinion on low-confidence classifier allows.
type ToxicityAnalyzer interface {
	Analyze(ctx context.Context, text string) (CheckResult, error)
}

// Status reports per-layer enablement for operational visibility.
type Status struct {
	Layers StatusLayers `json:"layers"`
	Config StatusConfig `json:"config"`
}

type StatusLayers struct {
	Blocklist  bool `json:"blocklist"`
	Local      bool `json:"local"`
	Classifier bool `json:"classifier"`
	Secondary  bool `json:"secondary"`
}

type StatusConfig struct {
	FailOpen  bool  `json:"failOpen"`
	TimeoutMs int64 `json:"timeoutMs"`
}
