package bloom

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFilter_NoFalseNegatives verifies every added item is reported as
// possibly present.
func TestFilter_NoFalseNegatives(t *testing.T) {
	keywords := []string{"spam", "phishing", "free money", "bitcoin scam", "password steal"}
	f := New(keywords, 0.01)

	for _, kw := range keywords {
		assert.True(t, f.MayContain(kw), "added keyword %q must be reported present", kw)
	}
}

// TestFilter_MostlyRejectsAbsent verifies the false-positive rate stays
// roughly near the configured target on a disjoint probe set.
func TestFilter_MostlyRejectsAbsent(t *testing.T) {
	items := make([]string, 1000)
	for i := range items {
		items[i] = fmt.Sprintf("keyword-%d", i)
	}
	f := New(items, 0.01)

	falsePositives := 0
	probes := 10000
	for i := 0; i < probes; i++ {
		if f.MayContain(fmt.Sprintf("absent-%d", i)) {
			falsePositives++
		}
	}

	// 1% target; allow generous slack to keep the test stable.
	assert.Less(t, falsePositives, probes/20, "false positive rate far above target")
}

// TestFilter_EmptyInput verifies construction with no items behaves.
func TestFilter_EmptyInput(t *testing.T) {
	f := New(nil, 0.01)
	require.NotZero(t, f.Bits())
	assert.False(t, f.MayContain("anything"))
}

// TestFilter_DegenerateRate verifies invalid rates fall back to the default.
func TestFilter_DegenerateRate(t *testing.T) {
	f := New([]string{"scam"}, 0)
	assert.True(t, f.MayContain("scam"))

	f = New([]string{"scam"}, 1.5)
	assert.True(t, f.MayContain("scam"))
}
