package heuristic

import (
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/modguard/pipeline/pkg/moderation"
)

const (
	CategoryProfanity = "profanity"
	CategoryThreat    = "threat"
	CategoryPII       = "pii"
)

// Config controls PII strictness.
type Config struct {
	// BlockSocialHandles rejects text carrying @handle references.
	BlockSocialHandles bool
	// AllowNameIntroductions permits "my name is X" self-identification.
	AllowNameIntroductions bool
}

// Checker runs deterministic, in-process pattern checks. It performs no
// I/O and is safe for concurrent use.
type Checker struct {
	cfg    Config
	logger *logrus.Logger
}

func NewChecker(logger *logrus.Logger, cfg Config) *Checker {
	return &Checker{cfg: cfg, logger: logger}
}

// Check implements moderation.HeuristicChecker. Reasons never echo the
// matched content.
func (c *Checker) Check(text string) (moderation.CheckResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return moderation.CheckResult{
			Allowed:  false,
			Reason:   "content is empty",
			Category: "empty",
		}, nil
	}

	if token, ok := c.findProfanity(trimmed); ok {
		c.logger.WithFields(logrus.Fields{
			"category":     CategoryProfanity,
			"token_length": len(token),
		}).Debug("heuristic match")
		return moderation.CheckResult{
			Allowed:  false,
			Reason:   "contains language that is not allowed",
			Category: CategoryProfanity,
		}, nil
	}

	for _, pattern := range threatPatterns {
		if pattern.MatchString(trimmed) {
			return moderation.CheckResult{
				Allowed:  false,
				Reason:   "contains threatening language",
				Category: CategoryThreat,
			}, nil
		}
	}

	if reason, ok := c.findPII(trimmed); ok {
		return moderation.CheckResult{
			Allowed:  false,
			Reason:   reason,
			Category: CategoryPII,
		}, nil
	}

	return moderation.CheckResult{Allowed: true}, nil
}

// findProfanity matches whole tokens only; substrings of clean words
// ("grass", "class") never match.
func (c *Checker) findProfanity(text string) (string, bool) {
	for _, token := range splitTokens(strings.ToLower(text)) {
		if _, ok := profanityWords[token]; ok {
			return token, true
		}
	}
	return "", false
}

func (c *Checker) findPII(text string) (string, bool) {
	if emailPattern.MatchString(text) {
		return "contains an email address", true
	}
	if phonePattern.MatchString(text) {
		return "contains a phone number", true
	}
	if c.cfg.BlockSocialHandles && socialHandlePattern.MatchString(text) {
		return "contains a social media handle", true
	}
	if !c.cfg.AllowNameIntroductions && nameIntroPattern.MatchString(text) {
		return "contains personal identifying information", true
	}
	return "", false
}

func splitTokens(s string) []string {
	res := make([]string, 0, 16)
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			res = append(res, s[start:i])
			start = -1
		}
	}
	if start != -1 {
		res = append(res, s[start:])
	}
	return res
}
