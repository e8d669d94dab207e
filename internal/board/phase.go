package board

import (
	"regexp"
	"strconv"
	"strings"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseActivate
	PhaseControl
	PhaseDeploy
	PhaseBattle
	PhaseMove
	PhaseDraw
	PhasePlayStarting
)

var phaseNames = map[Phase]string{
	PhaseUnknown:      "UNKNOWN",
	PhaseActivate:     "ACTIVATE",
	PhaseControl:      "CONTROL",
	PhaseDeploy:       "DEPLOY",
	PhaseBattle:       "BATTLE",
	PhaseMove:         "MOVE",
	PhaseDraw:         "DRAW",
	PhasePlayStarting: "PLAY_STARTING_CARDS",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// turnOrdinalPattern matches the parenthesized turn ordinal the server
// appends to phase labels, e.g. "Deploy (4)".
var turnOrdinalPattern = regexp.MustCompile(`\((\d+)\)\s*$`)

// ParsePhaseLabel parses a free-text phase label into a Phase and the turn
// number it carries. The turn number is zero when the label carries none.
func ParsePhaseLabel(label string) (Phase, int) {
	turn := 0
	if m := turnOrdinalPattern.FindStringSubmatch(label); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			turn = n
		}
	}

	lower := strings.ToLower(label)
	phase := PhaseUnknown
	switch {
	case strings.Contains(lower, "activate"):
		phase = PhaseActivate
	case strings.Contains(lower, "control"):
		phase = PhaseControl
	case strings.Contains(lower, "deploy"):
		phase = PhaseDeploy
	case strings.Contains(lower, "battle"):
		phase = PhaseBattle
	case strings.Contains(lower, "move"):
		phase = PhaseMove
	case strings.Contains(lower, "draw"):
		phase = PhaseDraw
	case strings.Contains(lower, "starting"):
		phase = PhasePlayStarting
	}

	return phase, turn
}
