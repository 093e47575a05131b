package risk

import (
	"strings"
	"time"

	"github.com/Gopher0727/GroupGuard/config"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/utils/bloom"
)

// Policy carries every tunable the detectors consult. It is built once
// from configuration and passed explicitly into each Classify call, so
// classification never reads process-wide mutable state and identical
// inputs always produce identical output.
type Policy struct {
	// BannedKeywords are matched as token phrases against normalized
	// message text ("free money" matches the two adjacent tokens).
	BannedKeywords []string

	// MaxMessageLen flags very long messages as likely spam.
	MaxMessageLen int

	// MaxLinks flags messages carrying more than this many links.
	MaxLinks int

	// CapsRatio flags messages whose uppercase share exceeds the ratio,
	// once the message is at least CapsMinLen runes long.
	CapsRatio  float64
	CapsMinLen int

	// FloodCount flags a member whose recent activity count reaches it.
	FloodCount int

	// NewMemberAge is the membership age under which link posting is
	// treated as a scam signal.
	NewMemberAge time.Duration

	// AlertThreshold is the minimum classified level that produces an
	// alert trigger.
	AlertThreshold models.RiskLevel

	// ContentMaxLen bounds stored message content. Classification sees
	// the full text; only persistence truncates.
	ContentMaxLen int

	keywordFilter *bloom.Filter // pre-screen over keyword head tokens
}

// NewPolicy compiles the risk section of the configuration.
// Threshold strings that fail to parse fall back to defaults rather
// than failing startup: "high" for alerting.
func NewPolicy(cfg config.RiskConfig) *Policy {
	p := &Policy{
		BannedKeywords: normalizeKeywords(cfg.BannedKeywords),
		MaxMessageLen:  cfg.MaxMessageLen,
		MaxLinks:       cfg.MaxLinks,
		CapsRatio:      cfg.CapsRatio,
		CapsMinLen:     cfg.CapsMinLen,
		FloodCount:     cfg.FloodCount,
		NewMemberAge:   time.Duration(cfg.NewMemberAgeMins) * time.Minute,
		AlertThreshold: models.RiskHigh,
		ContentMaxLen:  cfg.ContentMaxLen,
	}
	if level, err := models.ParseRiskLevel(cfg.AlertThreshold); err == nil {
		p.AlertThreshold = level
	}

	heads := make([]string, 0, len(p.BannedKeywords))
	for _, kw := range p.BannedKeywords {
		if fields := strings.Fields(kw); len(fields) > 0 {
			heads = append(heads, fields[0])
		}
	}
	p.keywordFilter = bloom.New(heads, 0.01)

	return p
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
