package risk

import (
	"github.com/Gopher0727/GroupGuard/internal/models"
)

// Classifier combines independent detector signals into one risk level.
//
// The reduction is deterministic: the final level is the maximum across
// all signals, and when several detectors report that same level the
// trigger is taken from the one with the highest rank. Detectors can be
// added or removed without touching the combination logic.
type Classifier struct {
	detectors []Detector
}

// NewClassifier creates a classifier over the given detector set.
// With no detectors the built-in set is used.
func NewClassifier(detectors ...Detector) *Classifier {
	if len(detectors) == 0 {
		detectors = DefaultDetectors()
	}
	return &Classifier{detectors: detectors}
}

// Classify evaluates every detector against the activity and reduces
// their signals. It is pure with respect to the store: all contextual
// signals arrive through gctx and mctx, the policy arrives through p.
func (c *Classifier) Classify(act Activity, gctx GroupContext, mctx MemberContext, p *Policy) Result {
	level := models.RiskNormal

	var winner *Signal
	winnerRank := -1

	for _, d := range c.detectors {
		signal, ok := d.Detect(act, gctx, mctx, p)
		if !ok {
			continue
		}
		if signal.Level > level {
			level = signal.Level
			s := signal
			winner = &s
			winnerRank = d.Rank()
		} else if signal.Level == level && winner != nil && d.Rank() > winnerRank {
			s := signal
			winner = &s
			winnerRank = d.Rank()
		}
	}

	result := Result{Level: level}
	if winner != nil && level >= p.AlertThreshold {
		result.Trigger = &AlertTrigger{
			AlertType: winner.AlertType,
			Message:   winner.Detail,
			RiskLevel: level,
		}
	}
	return result
}
