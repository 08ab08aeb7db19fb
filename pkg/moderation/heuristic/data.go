package heuristic

import "regexp"

// profanityWords is matched against whole tokens only, never raw
// substrings: "grass", "class" and "shellfish" must not trigger. A blocked
// root embedded across a word boundary inside a single token (a place name
// containing one, say) can still match; that false positive is accepted.
var profanityWords = map[string]struct{}{
	"fuck":         {},
	"fucking":      {},
	"fucker":       {},
	"motherfucker": {},
	"shit":         {},
	"bullshit":     {},
	"ass":          {},
	"asshole":      {},
	"bitch":        {},
	"bastard":      {},
	"cunt":         {},
	"dick":         {},
	"dickhead":     {},
	"prick":        {},
	"piss":         {},
	"whore":        {},
	"slut":         {},
	"wanker":       {},
	"twat":         {},
	"douchebag":    {},
}

// threatPatterns is a distinct category from profanity: these reject even
// when no profane token appears.
var threatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi('?ll| will| am going to|m gonna| would)?\s*(kill|hurt|murder|stab|shoot)\s+(you|u|your family|him|her|them)\b`),
	regexp.MustCompile(`(?i)\bkill\s+(yourself|urself|yoself)\b`),
	regexp.MustCompile(`(?i)\bkys\b`),
	regexp.MustCompile(`(?i)\bgo\s+die\b`),
	regexp.MustCompile(`(?i)\b(hope|wish)\s+(you|u)\s+die\b`),
	regexp.MustCompile(`(?i)\byou\s+(deserve|should)\s+to\s+die\b`),
	regexp.MustCompile(`(?i)\bi know where you live\b`),
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Requires enough digits to be a dialable number; short figures like
	// "saw 3 deer" or a year must not trigger.
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`)

	socialHandlePattern = regexp.MustCompile(`(^|\s)@[A-Za-z0-9_.]{2,30}\b`)

	nameIntroPattern = regexp.MustCompile(`(?i)\bmy name is\s+\S+`)
)
