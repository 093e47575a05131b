package risk

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// Signal is one detector's independent verdict about an activity.
type Signal struct {
	Level     models.RiskLevel
	AlertType string
	Detail    string
}

// Detector produces an independent risk signal for an activity.
// Implementations must be pure functions of their inputs.
//
// Rank orders detectors by severity for tie-breaking: when two
// detectors report the same risk level, the trigger comes from the
// higher-ranked one. Ranks are distinct across the default set.
type Detector interface {
	Name() string
	Rank() int
	Detect(act Activity, gctx GroupContext, mctx MemberContext, p *Policy) (Signal, bool)
}

// DefaultDetectors returns the built-in detector set.
func DefaultDetectors() []Detector {
	return []Detector{
		scamLinkDetector{},
		keywordDetector{},
		linkFloodDetector{},
		messageFloodDetector{},
		longMessageDetector{},
		capsDetector{},
	}
}

// keywordDetector matches banned keyword phrases against the message
// token stream. The policy's bloom filter rejects most clean messages
// before the exact phrase scan runs; a bloom positive is always
// confirmed exactly, so false positives cannot change the result.
type keywordDetector struct{}

func (keywordDetector) Name() string { return "banned_keyword" }
func (keywordDetector) Rank() int    { return 5 }

func (keywordDetector) Detect(act Activity, _ GroupContext, _ MemberContext, p *Policy) (Signal, bool) {
	if act.Content == "" || len(p.BannedKeywords) == 0 {
		return Signal{}, false
	}

	tokens := tokenize(act.Content)

	prescreened := false
	for _, tok := range tokens {
		if p.keywordFilter.MayContain(tok) {
			prescreened = true
			break
		}
	}
	if !prescreened {
		return Signal{}, false
	}

	for _, kw := range p.BannedKeywords {
		if containsPhrase(tokens, strings.Fields(kw)) {
			return Signal{
				Level:     models.RiskHigh,
				AlertType: "banned_keyword",
				Detail:    fmt.Sprintf("banned keyword detected: %q", kw),
			}, true
		}
	}
	return Signal{}, false
}

// scamLinkDetector flags link posting by members that just joined.
// A brand-new member blasting more links than the flood threshold is
// the strongest scam signal the detectors produce.
type scamLinkDetector struct{}

func (scamLinkDetector) Name() string { return "scam_link" }
func (scamLinkDetector) Rank() int    { return 6 }

func (scamLinkDetector) Detect(act Activity, _ GroupContext, mctx MemberContext, p *Policy) (Signal, bool) {
	if !mctx.Known || act.Content == "" {
		return Signal{}, false
	}
	age := act.Timestamp.Sub(mctx.JoinedAt)
	if age < 0 || age >= p.NewMemberAge {
		return Signal{}, false
	}

	links := countLinks(act.Content)
	if links == 0 {
		return Signal{}, false
	}

	level := models.RiskHigh
	if p.MaxLinks > 0 && links > p.MaxLinks {
		level = models.RiskCritical
	}
	return Signal{
		Level:     level,
		AlertType: "scam_link",
		Detail:    fmt.Sprintf("new member posted %d link(s) within %s of joining", links, age.Round(time.Second)),
	}, true
}

// linkFloodDetector flags messages carrying too many links.
type linkFloodDetector struct{}

func (linkFloodDetector) Name() string { return "link_flood" }
func (linkFloodDetector) Rank() int    { return 4 }

func (linkFloodDetector) Detect(act Activity, _ GroupContext, _ MemberContext, p *Policy) (Signal, bool) {
	if act.Content == "" || p.MaxLinks <= 0 {
		return Signal{}, false
	}
	links := countLinks(act.Content)
	if links <= p.MaxLinks {
		return Signal{}, false
	}
	return Signal{
		Level:     models.RiskHigh,
		AlertType: "link_flood",
		Detail:    fmt.Sprintf("%d links in one message", links),
	}, true
}

// messageFloodDetector flags members whose recent activity count
// reached the flood threshold. The count is a contextual signal the
// caller gathered, so replaying the same inputs reproduces the verdict.
type messageFloodDetector struct{}

func (messageFloodDetector) Name() string { return "flood" }
func (messageFloodDetector) Rank() int    { return 3 }

func (messageFloodDetector) Detect(_ Activity, _ GroupContext, mctx MemberContext, p *Policy) (Signal, bool) {
	if !mctx.Known || p.FloodCount <= 0 || mctx.RecentActivityCount < int64(p.FloodCount) {
		return Signal{}, false
	}
	return Signal{
		Level:     models.RiskHigh,
		AlertType: "spam",
		Detail:    fmt.Sprintf("member produced %d activities in the recent window", mctx.RecentActivityCount),
	}, true
}

// longMessageDetector flags very long messages as potential spam.
type longMessageDetector struct{}

func (longMessageDetector) Name() string { return "long_message" }
func (longMessageDetector) Rank() int    { return 2 }

func (longMessageDetector) Detect(act Activity, _ GroupContext, _ MemberContext, p *Policy) (Signal, bool) {
	if p.MaxMessageLen <= 0 || len([]rune(act.Content)) <= p.MaxMessageLen {
		return Signal{}, false
	}
	return Signal{
		Level:     models.RiskSuspicious,
		AlertType: "spam",
		Detail:    fmt.Sprintf("message length %d exceeds %d", len([]rune(act.Content)), p.MaxMessageLen),
	}, true
}

// capsDetector flags shouting: a high share of uppercase letters in a
// message beyond the minimum length.
type capsDetector struct{}

func (capsDetector) Name() string { return "caps" }
func (capsDetector) Rank() int    { return 1 }

func (capsDetector) Detect(act Activity, _ GroupContext, _ MemberContext, p *Policy) (Signal, bool) {
	runes := []rune(act.Content)
	if p.CapsRatio <= 0 || len(runes) < p.CapsMinLen || p.CapsMinLen <= 0 {
		return Signal{}, false
	}

	upper := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	ratio := float64(upper) / float64(len(runes))
	if ratio <= p.CapsRatio {
		return Signal{}, false
	}
	return Signal{
		Level:     models.RiskSuspicious,
		AlertType: "spam",
		Detail:    fmt.Sprintf("uppercase ratio %.2f exceeds %.2f", ratio, p.CapsRatio),
	}, true
}

// tokenize lowercases the text and splits it into alphanumeric tokens.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != ':' && r != '/' && r != '.'
	})
}

// containsPhrase reports whether the phrase tokens appear adjacently in
// the token stream.
func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// countLinks counts http/https URLs in the text.
func countLinks(s string) int {
	lower := strings.ToLower(s)
	return strings.Count(lower, "http://") + strings.Count(lower, "https://")
}
