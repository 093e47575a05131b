package risk

import (
	"time"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// Activity is the classifier's view of one observed event.
type Activity struct {
	Type      string
	Content   string
	Timestamp time.Time
}

// GroupContext carries the group-level signals the caller gathered
// before classification. The classifier itself never touches the store.
type GroupContext struct {
	Status              string
	MemberCount         int
	RecentActivityCount int64
}

// MemberContext carries the acting member's signals. Known is false for
// system events without a user, and for users acting before they were
// recorded as members.
type MemberContext struct {
	Known               bool
	IsBot               bool
	JoinedAt            time.Time
	RecentActivityCount int64
}

// AlertTrigger describes the alert a risky activity should raise.
type AlertTrigger struct {
	AlertType string
	Message   string
	RiskLevel models.RiskLevel
}

// Result is the classifier output: the ordered risk level plus an
// optional trigger when the policy threshold was crossed.
type Result struct {
	Level   models.RiskLevel
	Trigger *AlertTrigger
}
