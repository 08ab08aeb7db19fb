package pipeline

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/modguard/pipeline/pkg/config"
	infraPrometheus "github.com/modguard/pipeline/pkg/infra/prometheus"
	"github.com/modguard/pipeline/pkg/moderation"
)

const (
	modeFull  = "full"
	modeQuick = "quick"
)

// Orchestrator sequences the moderation layers and applies the fail-closed
// policy. Layers run sequentially: each one's invocation depends on the
// previous outcome, and the two free layers resolve most requests before
// any paid remote call happens.
//
// The failure policy is asymmetric on purpose. The blocklist and the
// secondary analyzer are supplementary signals, so their errors are
// recoverable. The local heuristics and the primary classifier are the
// basis for approval; when either fails there is nothing left to approve
// on, and the request is rejected.
type Orchestrator struct {
	cfg    config.PipelineConfig
	logger *logrus.Logger

	blocklist  moderation.BlocklistChecker
	local      moderation.HeuristicChecker
	classifier moderation.Classifier
	secondary  moderation.ToxicityAnalyzer
}

func New(
	logger *logrus.Logger,
	cfg config.PipelineConfig,
	blocklistChecker moderation.BlocklistChecker,
	localChecker moderation.HeuristicChecker,
	classifierClient moderation.Classifier,
	secondaryAnalyzer moderation.ToxicityAnalyzer,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		blocklist:  blocklistChecker,
		local:      localChecker,
		classifier: classifierClient,
		secondary:  secondaryAnalyzer,
	}
}

// Moderate runs the full pipeline for one request. It always returns a
// decision; no error path leaks past this method.
func (o *Orchestrator) Moderate(ctx context.Context, req moderation.Request) moderation.Result {
	start := time.Now()
	requestID := newRequestID()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return o.decide(requestID, start, modeFull, moderation.LayerLocal, false, "content is empty", "")
	}

	if res, err := o.blocklist.Check(ctx, text); err != nil {
		o.recordLayerError(requestID, moderation.LayerBlocklist, err, false)
	} else if !res.Allowed {
		return o.decide(requestID, start, modeFull, moderation.LayerBlocklist, false, res.Reason, res.Category)
	}

	res, err := o.local.Check(text)
	if err != nil {
		o.recordLayerError(requestID, moderation.LayerLocal, err, true)
		return o.decide(requestID, start, modeFull, moderation.LayerLocal, false, "unable to verify content", "")
	}
	if !res.Allowed {
		return o.decide(requestID, start, modeFull, moderation.LayerLocal, false, res.Reason, res.Category)
	}

	verdict, err := o.classifier.Classify(ctx, text)
	if err != nil {
		fatal := !o.cfg.FailOpen
		o.recordLayerError(requestID, moderation.LayerClassifier, err, fatal)
		if o.cfg.FailOpen {
			// Development-only escape hatch. Resolution already forced
			// this off in production.
			return o.decide(requestID, start, modeFull, moderation.LayerClassifier, true, "", "")
		}
		return o.decide(requestID, start, modeFull, moderation.LayerClassifier, false, "unable to verify content safety", "unavailable")
	}
	if !verdict.Allowed {
		return o.decide(requestID, start, modeFull, moderation.LayerClassifier, false, verdict.Reason, verdict.Category)
	}

	if o.secondary != nil && o.cfg.SecondaryEnabled && verdict.Confidence < o.cfg.ConfidenceBypassThreshold {
		second, err := o.secondary.Analyze(ctx, text)
		if err != nil {
			// Supplementary opinion only: keep the classifier's allow.
			o.recordLayerError(requestID, moderation.LayerSecondary, err, false)
		} else if !second.Allowed {
			category := second.Category
			if category == "" {
				category = "toxicity"
			}
			return o.decide(requestID, start, modeFull, moderation.LayerSecondary, false, second.Reason, category)
		}
	}

	return o.decide(requestID, start, modeFull, moderation.LayerNone, true, "", "")
}

// QuickCheck runs only the network-free subset of the pipeline: the cached
// blocklist snapshot and the local heuristics. It is meant for low-latency
// pre-submission checks; the authoritative pipeline still runs before
// anything is persisted.
func (o *Orchestrator) QuickCheck(req moderation.Request) moderation.Result {
	start := time.Now()
	requestID := newRequestID()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return o.decide(requestID, start, modeQuick, moderation.LayerLocal, false, "content is empty", "")
	}

	if snapshotter, ok := o.blocklist.(interface {
		CheckSnapshot(text string) moderation.CheckResult
	}); ok {
		if res := snapshotter.CheckSnapshot(text); !res.Allowed {
			return o.decide(requestID, start, modeQuick, moderation.LayerBlocklist, false, res.Reason, res.Category)
		}
	}

	res, err := o.local.Check(text)
	if err != nil {
		o.recordLayerError(requestID, moderation.LayerLocal, err, true)
		return o.decide(requestID, start, modeQuick, moderation.LayerLocal, false, "unable to verify content", "")
	}
	if !res.Allowed {
		return o.decide(requestID, start, modeQuick, moderation.LayerLocal, false, res.Reason, res.Category)
	}

	return o.decide(requestID, start, modeQuick, moderation.LayerNone, true, "", "")
}

// Status reports per-layer enablement for operational visibility. It is
// read from the resolved configuration, never from request-time state.
func (o *Orchestrator) Status() moderation.Status {
	return moderation.Status{
		Layers: moderation.StatusLayers{
			Blocklist:  o.blocklist != nil,
			Local:      o.local != nil,
			Classifier: o.cfg.ClassifierEnabled,
			Secondary:  o.cfg.SecondaryEnabled,
		},
		Config: moderation.StatusConfig{
			FailOpen:  o.cfg.FailOpen,
			TimeoutMs: o.cfg.Timeout.Milliseconds(),
		},
	}
}

func (o *Orchestrator) decide(
	requestID string,
	start time.Time,
	mode string,
	layer moderation.Layer,
	allowed bool,
	reason string,
	category string,
) moderation.Result {
	durationMs := time.Since(start).Milliseconds()

	infraPrometheus.DecisionTotal.WithLabelValues(string(layer), strconv.FormatBool(allowed)).Inc()
	infraPrometheus.PipelineLatency.WithLabelValues(mode).Observe(float64(durationMs))

	fields := logrus.Fields{
		"request_id":  requestID,
		"mode":        mode,
		"layer":       layer,
		"allowed":     allowed,
		"duration_ms": durationMs,
	}
	if category != "" {
		fields["category"] = category
	}
	if allowed {
		o.logger.WithFields(fields).Debug("moderation decision")
	} else {
		o.logger.WithFields(fields).Info("moderation decision")
	}

	return moderation.Result{
		Allowed: allowed,
		Reason:  reason,
		Telemetry: moderation.Telemetry{
			RequestID:  requestID,
			DurationMs: durationMs,
			Layer:      layer,
			Category:   category,
		},
	}
}

func (o *Orchestrator) recordLayerError(requestID string, layer moderation.Layer, err error, fatal bool) {
	infraPrometheus.LayerErrorTotal.WithLabelValues(string(layer), strconv.FormatBool(fatal)).Inc()

	entry := o.logger.WithError(err).WithFields(logrus.Fields{
		"request_id": requestID,
		"layer":      layer,
	})
	if fatal {
		entry.Error("moderation layer failed, rejecting request")
	} else {
		entry.Warn("moderation layer failed, continuing")
	}
}
