package blocklist

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/modguard/pipeline/pkg/moderation"
)

type snapshot struct {
	words   map[string]Entry
	phrases []Entry
	count   int
}

// Checker matches normalized text against a cached blocklist snapshot.
// The snapshot is loaded lazily on first use and replaced atomically on
// reload; concurrent checks never block on a reload.
type Checker struct {
	store  Store
	logger *logrus.Logger

	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

func NewChecker(logger *logrus.Logger, store Store) *Checker {
	return &Checker{
		store:  store,
		logger: logger,
	}
}

// Check implements moderation.BlocklistChecker. A returned error means the
// backing store could not be read and no snapshot exists yet; the caller
// decides what that means for the request.
func (c *Checker) Check(ctx context.Context, text string) (moderation.CheckResult, error) {
	snap := c.current.Load()
	if snap == nil {
		if _, err := c.Reload(ctx); err != nil {
			return moderation.CheckResult{Allowed: true}, err
		}
		snap = c.current.Load()
	}
	return c.check(snap, text), nil
}

// CheckSnapshot matches against whatever snapshot is already loaded,
// without touching the store. Used by the quick/local-only mode, which
// must never perform I/O.
func (c *Checker) CheckSnapshot(text string) moderation.CheckResult {
	snap := c.current.Load()
	if snap == nil {
		return moderation.CheckResult{Allowed: true}
	}
	return c.check(snap, text)
}

// Reload fetches the full entry set and swaps the snapshot. Concurrent
// reloads are collapsed into one store read.
func (c *Checker) Reload(ctx context.Context) (int, error) {
	v, err, _ := c.group.Do("reload", func() (interface{}, error) {
		entries, err := c.store.Load(ctx)
		if err != nil {
			return 0, err
		}
		next := buildSnapshot(entries)
		c.current.Store(next)
		return next.count, nil
	})
	if err != nil {
		return 0, err
	}
	count, ok := v.(int)
	if !ok {
		return 0, nil
	}
	return count, nil
}

// Count returns the number of entries in the current snapshot.
func (c *Checker) Count() int {
	snap := c.current.Load()
	if snap == nil {
		return 0
	}
	return snap.count
}

func (c *Checker) check(snap *snapshot, text string) moderation.CheckResult {
	normalized := Normalize(text)
	if normalized == "" || snap.count == 0 {
		return moderation.CheckResult{Allowed: true}
	}

	var warned []Entry

	for _, token := range tokenize(normalized) {
		if entry, ok := snap.words[token]; ok {
			if entry.Severity == SeverityBlock {
				return blockedResult()
			}
			warned = append(warned, entry)
		}
	}

	for _, entry := range snap.phrases {
		if strings.Contains(normalized, entry.Phrase) {
			if entry.Severity == SeverityBlock {
				return blockedResult()
			}
			warned = append(warned, entry)
		}
	}

	for _, entry := range warned {
		c.logger.WithFields(logrus.Fields{
			"severity": entry.Severity,
			"language": entry.Language,
		}).Warn("blocklist warn-severity match")
	}

	return moderation.CheckResult{Allowed: true}
}

func blockedResult() moderation.CheckResult {
	return moderation.CheckResult{
		Allowed: false,
		Reason:  "content matches a blocked phrase",
	}
}

func buildSnapshot(entries []Entry) *snapshot {
	next := &snapshot{words: make(map[string]Entry, len(entries))}
	for _, entry := range entries {
		phrase := Normalize(entry.Phrase)
		if phrase == "" {
			continue
		}
		normalized := Entry{Phrase: phrase, Language: entry.Language, Severity: entry.Severity}
		if normalized.Severity != SeverityWarn {
			normalized.Severity = SeverityBlock
		}
		if strings.ContainsRune(phrase, ' ') {
			next.phrases = append(next.phrases, normalized)
		} else if existing, ok := next.words[phrase]; !ok || existing.Severity != SeverityBlock {
			next.words[phrase] = normalized
		}
		next.count++
	}
	return next
}
