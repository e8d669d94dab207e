package decision

import (
	"strings"

	"go.uber.org/zap"
)

// Severity classifies how entrenched a repeated decision pattern is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeveritySevere
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityMild:
		return "MILD"
	case SeveritySevere:
		return "SEVERE"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "NONE"
	}
}

// HistoryEntry is one recorded decision/response tuple.
type HistoryEntry struct {
	Kind     Kind
	Text     string
	Response string
	Repeats  int
}

// Prompts matching these fragments legitimately repeat many times while the
// opponent acts, so their repeat thresholds are raised rather than treated
// as a stall.
var expectedRepeatFragments = []string{
	"optional response",
	"about to",
	"react",
}

// Prompts matching these fragments are critical selections where passing
// would itself break game semantics (a forced pick must be made).
var criticalSelectionFragments = []string{
	"highest",
	"must choose",
	"forced",
}

const (
	defaultMildThreshold     = 4
	defaultSevereThreshold   = 8
	defaultCriticalThreshold = 16
	expectedRepeatMultiplier = 3
	historyCapacity          = 32
	keyTextLimit             = 120
)

// TrackerConfig holds the repeat thresholds. Zero values select defaults.
type TrackerConfig struct {
	MildThreshold     int
	SevereThreshold   int
	CriticalThreshold int
}

// Tracker records a short history of decision/response tuples and
// classifies the current repetition severity. One tracker belongs to
// exactly one session; it is never shared.
type Tracker struct {
	logger *zap.Logger

	mild     int
	severe   int
	critical int

	lastKey     string
	consecutive int

	history []HistoryEntry
	tried   map[string]map[string]bool
	blocked map[string]map[string]bool
}

// NewTracker creates a tracker with the given thresholds.
func NewTracker(cfg TrackerConfig, logger *zap.Logger) *Tracker {
	t := &Tracker{
		logger:   logger,
		mild:     cfg.MildThreshold,
		severe:   cfg.SevereThreshold,
		critical: cfg.CriticalThreshold,
		history:  make([]HistoryEntry, 0, historyCapacity),
		tried:    make(map[string]map[string]bool),
		blocked:  make(map[string]map[string]bool),
	}
	if t.mild <= 0 {
		t.mild = defaultMildThreshold
	}
	if t.severe <= t.mild {
		t.severe = defaultSevereThreshold
	}
	if t.critical <= t.severe {
		t.critical = defaultCriticalThreshold
	}
	return t
}

// loopKey identifies a decision pattern. The prompt is truncated so that
// server-side counters embedded deep in long prompts do not defeat matching.
func loopKey(kind Kind, text string) string {
	if len(text) > keyTextLimit {
		text = text[:keyTextLimit]
	}
	return kind.String() + "|" + text
}

func matchesAny(text string, fragments []string) bool {
	lower := strings.ToLower(text)
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// IsCriticalSelection reports whether the prompt is a forced pick where
// passing would break game semantics.
func IsCriticalSelection(text string) bool {
	return matchesAny(text, criticalSelectionFragments)
}

// Observe records that a decision with the given kind and prompt arrived
// and classifies the current repetition severity. Severity is non-decreasing
// while the same key repeats.
func (t *Tracker) Observe(kind Kind, text string) Severity {
	key := loopKey(kind, text)
	if key == t.lastKey {
		t.consecutive++
	} else {
		t.lastKey = key
		t.consecutive = 1
	}

	multiplier := 1
	if matchesAny(text, expectedRepeatFragments) {
		multiplier = expectedRepeatMultiplier
	}

	var severity Severity
	switch {
	case t.consecutive >= t.critical*multiplier:
		severity = SeverityCritical
	case t.consecutive >= t.severe*multiplier:
		severity = SeveritySevere
	case t.consecutive >= t.mild*multiplier:
		severity = SeverityMild
	default:
		severity = SeverityNone
	}

	if severity >= SeveritySevere && t.logger != nil {
		t.logger.Warn("decision loop detected",
			zap.String("severity", severity.String()),
			zap.Int("consecutive", t.consecutive),
			zap.String("kind", kind.String()),
			zap.String("text", text),
		)
	}
	return severity
}

// RecordResponse records the response chosen for a decision pattern.
func (t *Tracker) RecordResponse(kind Kind, text, response string) {
	key := loopKey(kind, text)
	set, ok := t.tried[key]
	if !ok {
		set = make(map[string]bool)
		t.tried[key] = set
	}
	set[response] = true

	if n := len(t.history); n > 0 {
		last := &t.history[n-1]
		if loopKey(last.Kind, last.Text) == key && last.Response == response {
			last.Repeats++
			return
		}
	}
	if len(t.history) >= historyCapacity {
		t.history = t.history[1:]
	}
	t.history = append(t.history, HistoryEntry{
		Kind:     kind,
		Text:     text,
		Response: response,
		Repeats:  1,
	})
}

// TriedValues returns the set of responses previously given for the pattern.
func (t *Tracker) TriedValues(kind Kind, text string) map[string]bool {
	return t.tried[loopKey(kind, text)]
}

// Block marks a response value as blocked for the pattern: it evidently
// failed or was cancelled and should not be re-tried.
func (t *Tracker) Block(kind Kind, text, value string) {
	key := loopKey(kind, text)
	set, ok := t.blocked[key]
	if !ok {
		set = make(map[string]bool)
		t.blocked[key] = set
	}
	set[value] = true
}

// BlockedValues returns the blocked response values for the pattern.
func (t *Tracker) BlockedValues(kind Kind, text string) map[string]bool {
	return t.blocked[loopKey(kind, text)]
}

// LastResponse returns the most recent response recorded for the pattern,
// empty when none was.
func (t *Tracker) LastResponse(kind Kind, text string) string {
	key := loopKey(kind, text)
	for i := len(t.history) - 1; i >= 0; i-- {
		if loopKey(t.history[i].Kind, t.history[i].Text) == key {
			return t.history[i].Response
		}
	}
	return ""
}

// PhaseChanged resets the consecutive counter. A new phase legitimately
// repeats prompts similar to the previous one.
func (t *Tracker) PhaseChanged() {
	t.lastKey = ""
	t.consecutive = 0
}

// SustainedCritical reports whether the pattern has repeated well past the
// critical threshold, the session-level signal to consider conceding.
func (t *Tracker) SustainedCritical() bool {
	return t.consecutive >= 2*t.critical
}

// History returns a copy of the bounded decision history, oldest first.
func (t *Tracker) History() []HistoryEntry {
	out := make([]HistoryEntry, len(t.history))
	copy(out, t.history)
	return out
}
