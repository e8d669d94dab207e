package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityEscalationIsMonotonic(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)

	previous := SeverityNone
	for i := 0; i < 40; i++ {
		severity := tracker.Observe(KindActionChoice, "Choose an action")
		assert.GreaterOrEqual(t, int(severity), int(previous),
			"severity must be non-decreasing while the same key repeats (iteration %d)", i)
		previous = severity
	}
	assert.Equal(t, SeverityCritical, previous)
	assert.True(t, tracker.SustainedCritical())
}

func TestSeverityResetsOnDifferentKey(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)

	for i := 0; i < 10; i++ {
		tracker.Observe(KindActionChoice, "Choose an action")
	}
	severity := tracker.Observe(KindActionChoice, "A different prompt")
	assert.Equal(t, SeverityNone, severity)
}

func TestPhaseChangeResetsConsecutiveCount(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)

	for i := 0; i < 10; i++ {
		tracker.Observe(KindActionChoice, "Choose an action")
	}
	tracker.PhaseChanged()
	severity := tracker.Observe(KindActionChoice, "Choose an action")
	assert.Equal(t, SeverityNone, severity)
}

func TestExpectedRepeatPromptsRaiseThresholds(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)

	var severity Severity
	for i := 0; i < 8; i++ {
		severity = tracker.Observe(KindActionChoice, "Optional response while opponent acts")
	}
	assert.Equal(t, SeverityNone, severity, "allow-listed prompts tolerate more repeats")

	for i := 0; i < 10; i++ {
		severity = tracker.Observe(KindActionChoice, "Optional response while opponent acts")
	}
	assert.Equal(t, SeverityMild, severity)
}

func TestTriedAndBlockedValues(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)

	tracker.RecordResponse(KindActionChoice, "Choose", "a0")
	tracker.RecordResponse(KindActionChoice, "Choose", "a0")
	tracker.RecordResponse(KindActionChoice, "Choose", "a1")

	tried := tracker.TriedValues(KindActionChoice, "Choose")
	assert.True(t, tried["a0"])
	assert.True(t, tried["a1"])

	tracker.Block(KindActionChoice, "Choose", "a0")
	assert.True(t, tracker.BlockedValues(KindActionChoice, "Choose")["a0"])

	history := tracker.History()
	assert.Len(t, history, 2, "consecutive identical tuples collapse into a repeat count")
	assert.Equal(t, 2, history[0].Repeats)
}

func TestHistoryIsBounded(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)

	for i := 0; i < historyCapacity*2; i++ {
		tracker.RecordResponse(KindActionChoice, "Choose", string(rune('a'+i%26)))
	}
	assert.LessOrEqual(t, len(tracker.History()), historyCapacity)
}

func TestIsCriticalSelection(t *testing.T) {
	assert.True(t, IsCriticalSelection("Choose card with highest forfeit value"))
	assert.True(t, IsCriticalSelection("You must choose a card to lose"))
	assert.False(t, IsCriticalSelection("Choose an action"))
}
