package risk

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// TestClassify_Property_Deterministic checks that identical inputs
// always produce identical output, which safe audit-trail replay
// depends on.
func TestClassify_Property_Deterministic(t *testing.T) {
	c := NewClassifier()
	p := testPolicy()
	base := time.Unix(1700000000, 0)

	rapid.Check(t, func(t *rapid.T) {
		act := Activity{
			Type:      rapid.SampledFrom([]string{"message", "join", "leave", "media"}).Draw(t, "type"),
			Content:   rapid.String().Draw(t, "content"),
			Timestamp: base.Add(time.Duration(rapid.Int64Range(0, 86400).Draw(t, "ts")) * time.Second),
		}
		gctx := GroupContext{
			Status:              rapid.SampledFrom([]string{"safe", "suspicious", "dangerous"}).Draw(t, "status"),
			MemberCount:         rapid.IntRange(0, 10000).Draw(t, "members"),
			RecentActivityCount: rapid.Int64Range(0, 1000).Draw(t, "gcount"),
		}
		mctx := MemberContext{
			Known:               rapid.Bool().Draw(t, "known"),
			IsBot:               rapid.Bool().Draw(t, "bot"),
			JoinedAt:            base.Add(-time.Duration(rapid.Int64Range(0, 86400).Draw(t, "age")) * time.Second),
			RecentActivityCount: rapid.Int64Range(0, 100).Draw(t, "mcount"),
		}

		first := c.Classify(act, gctx, mctx, p)
		for i := 0; i < 3; i++ {
			again := c.Classify(act, gctx, mctx, p)
			if again.Level != first.Level {
				t.Fatalf("level not deterministic: %v then %v", first.Level, again.Level)
			}
			if (again.Trigger == nil) != (first.Trigger == nil) {
				t.Fatalf("trigger presence not deterministic")
			}
			if first.Trigger != nil && *again.Trigger != *first.Trigger {
				t.Fatalf("trigger not deterministic: %+v then %+v", first.Trigger, again.Trigger)
			}
		}

		// A trigger only appears at or above the policy threshold, and
		// always carries the reduced level.
		if first.Trigger != nil {
			if first.Level < p.AlertThreshold {
				t.Fatalf("trigger emitted below threshold: %v", first.Level)
			}
			if first.Trigger.RiskLevel != first.Level {
				t.Fatalf("trigger level %v != result level %v", first.Trigger.RiskLevel, first.Level)
			}
			if first.Trigger.AlertType == "" {
				t.Fatalf("trigger without alert type")
			}
		}

		if first.Level < models.RiskNormal || first.Level > models.RiskCritical {
			t.Fatalf("level %d outside the ordered scale", first.Level)
		}
	})
}
