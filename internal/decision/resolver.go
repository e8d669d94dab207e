package decision

import (
	"math/rand"
	"sort"
	"strconv"

	"github.com/swccgarena/rando/internal/board"
	"go.uber.org/zap"
)

// Timing is the response-pacing classification handed to the network layer.
// The resolver itself never sleeps.
type Timing int

const (
	TimingFast Timing = iota
	TimingDeliberate
)

func (t Timing) String() string {
	if t == TimingFast {
		return "FAST"
	}
	return "DELIBERATE"
}

// Context is what an evaluator sees: the decision request plus a read-only
// view of the board.
type Context struct {
	Request *Request
	Board   *board.Model
}

// EvaluatedAction is one scored candidate response produced by an evaluator.
type EvaluatedAction struct {
	Value   string
	Score   float64
	Reasons []string
}

// Scorer is the capability interface for pluggable scoring strategies.
type Scorer interface {
	Name() string
	CanEvaluate(ctx *Context) bool
	Evaluate(ctx *Context) []EvaluatedAction
}

// Result is the outcome of one resolution cycle.
type Result struct {
	Value  string
	Timing Timing
	Source string

	// ConsiderConcede signals the session-level escape hatch: the same
	// decision has repeated far past the critical threshold.
	ConsiderConcede bool
}

// stageResult is the explicit per-stage outcome of the resolution ladder: a
// stage either produced a value or degrades to the next stage. Faults inside
// a stage are converted to degradation, never propagated.
type stageResult struct {
	value string
	ok    bool
}

// Resolver turns a decision request plus the current board state into a
// guaranteed structurally valid response. Stages run in order (strategy
// scoring, per-kind heuristics, the safety net) and the final structural
// check runs unconditionally after whichever stage produced the value.
type Resolver struct {
	logger  *zap.Logger
	board   *board.Model
	tracker *Tracker
	scorers []Scorer
	rng     *rand.Rand

	lastActionKind  Kind
	lastActionText  string
	lastActionValue string
	hasLastAction   bool
}

// NewResolver creates a resolver for one session. scorers may be empty, in
// which case resolution starts at the heuristics stage.
func NewResolver(b *board.Model, tracker *Tracker, scorers []Scorer, rng *rand.Rand, logger *zap.Logger) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Resolver{
		logger:  logger,
		board:   b,
		tracker: tracker,
		scorers: scorers,
		rng:     rng,
	}
}

// PhaseChanged forwards a phase change to the loop tracker.
func (r *Resolver) PhaseChanged() {
	r.tracker.PhaseChanged()
}

// Resolve runs the full resolution pipeline for one decision request.
func (r *Resolver) Resolve(req *Request) Result {
	severity := r.tracker.Observe(req.Kind, req.Text)
	blocked := r.tracker.BlockedValues(req.Kind, req.Text)
	tried := r.tracker.TriedValues(req.Kind, req.Text)

	source := "strategy"
	stage := r.runStage("strategy", func() stageResult {
		return r.resolveWithScorers(req, severity, tried, blocked)
	})
	if !stage.ok {
		source = "heuristic"
		stage = r.runStage("heuristic", func() stageResult {
			return r.resolveHeuristic(req)
		})
	}
	if !stage.ok {
		source = "safety-net"
		stage = stageResult{value: EmergencyResponse(req), ok: true}
	}

	value := r.applyLoopOverrides(req, stage.value, severity, tried, blocked)

	checked, corrected := FinalCheck(req, value)
	if corrected && r.logger != nil {
		r.logger.Warn("final check corrected structurally invalid response",
			zap.String("decision_id", req.ID),
			zap.String("kind", req.Kind.String()),
			zap.String("rejected", value),
			zap.String("corrected", checked),
			zap.String("source", source),
		)
	}
	value = checked

	r.tracker.RecordResponse(req.Kind, req.Text, value)
	r.noteOutcome(req, value)

	timing := TimingDeliberate
	if req.NoLongDelay {
		timing = TimingFast
	}

	if r.logger != nil {
		r.logger.Debug("decision resolved",
			zap.String("decision_id", req.ID),
			zap.String("kind", req.Kind.String()),
			zap.String("value", value),
			zap.String("source", source),
			zap.String("severity", severity.String()),
		)
	}

	return Result{
		Value:           value,
		Timing:          timing,
		Source:          source,
		ConsiderConcede: severity == SeverityCritical && r.tracker.SustainedCritical(),
	}
}

// runStage executes one resolution stage, converting any internal fault into
// degradation to the next stage.
func (r *Resolver) runStage(name string, fn func() stageResult) (result stageResult) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.logger != nil {
				r.logger.Error("resolution stage panicked, degrading",
					zap.String("stage", name),
					zap.Any("panic", rec),
				)
			}
			result = stageResult{}
		}
	}()
	return fn()
}

// resolveWithScorers asks every applicable evaluator for scored candidates
// and picks the best-scoring unblocked one.
func (r *Resolver) resolveWithScorers(req *Request, severity Severity, tried, blocked map[string]bool) stageResult {
	if len(r.scorers) == 0 {
		return stageResult{}
	}

	ctx := &Context{Request: req, Board: r.board}
	var candidates []EvaluatedAction
	for _, s := range r.scorers {
		if !s.CanEvaluate(ctx) {
			continue
		}
		for _, a := range s.Evaluate(ctx) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return stageResult{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	// Mild severity biases toward passing while still letting a strategy
	// with real conviction choose.
	if severity == SeverityMild && req.PassAllowed() && candidates[0].Score <= 0 && r.rng.Float64() < 0.5 {
		return stageResult{value: "", ok: true}
	}

	winner := candidates[0]
	if blocked[winner.Value] {
		for _, c := range candidates[1:] {
			if !blocked[c.Value] {
				winner = c
				break
			}
		}
	}
	return stageResult{value: winner.Value, ok: true}
}

// applyLoopOverrides applies the escalating loop interventions in priority
// order: force-divergent beats force-pass beats none.
func (r *Resolver) applyLoopOverrides(req *Request, value string, severity Severity, tried, blocked map[string]bool) string {
	if severity < SeveritySevere {
		return value
	}

	avoid := make(map[string]bool, len(tried)+len(blocked))
	for v := range tried {
		avoid[v] = true
	}
	for v := range blocked {
		avoid[v] = true
	}

	if !avoid[value] && severity == SeveritySevere {
		return value
	}

	// Prefer passing out of the loop when legal and the prompt is not a
	// forced pick.
	if req.PassAllowed() && !IsCriticalSelection(req.Text) && !avoid[""] {
		return ""
	}

	for _, candidate := range r.legalValues(req) {
		if !avoid[candidate] {
			return candidate
		}
	}

	// Every legal value has been tried. Still diverge from the most recent
	// response so the exchange cannot settle back into the same exact loop.
	last := r.tracker.LastResponse(req.Kind, req.Text)
	for _, candidate := range r.legalValues(req) {
		if candidate != last && !blocked[candidate] {
			return candidate
		}
	}
	return value
}

// integerEnumerationCap bounds the candidate window for integer prompts.
// The avoid sets are history-bounded, so a window larger than the history
// always contains a fresh value even when the prompt's range is huge.
const integerEnumerationCap = 64

// legalValues enumerates the structurally legal single responses for a
// request, used to force divergence out of a loop.
func (r *Resolver) legalValues(req *Request) []string {
	switch req.Kind {
	case KindInteger:
		var values []string
		max := req.Max
		if max < req.Min {
			max = req.Min
		}
		lo := req.Min
		if max-lo+1 > integerEnumerationCap {
			lo = max - integerEnumerationCap + 1
		}
		// Highest first: the minimum is what a stuck resolver has most
		// likely been repeating.
		for n := max; n >= lo; n-- {
			values = append(values, strconv.Itoa(n))
		}
		return values
	case KindMultipleChoice:
		var values []string
		for i := range req.Options {
			values = append(values, strconv.Itoa(i))
		}
		return values
	case KindActionChoice, KindCardActionChoice:
		return append([]string(nil), req.ActionIDs...)
	case KindCardSelection, KindArbitraryCards:
		return req.SelectableCardIDs()
	default:
		return append(append([]string(nil), req.ActionIDs...), req.CardIDs...)
	}
}

// noteOutcome records the action that led into the next decision, and marks
// the previous action as blocked when this decision ended in a pass for a
// card-selection style prompt: the action evidently failed or was cancelled.
func (r *Resolver) noteOutcome(req *Request, value string) {
	isSelection := req.Kind == KindCardSelection || req.Kind == KindArbitraryCards
	if isSelection && value == "" && r.hasLastAction {
		r.tracker.Block(r.lastActionKind, r.lastActionText, r.lastActionValue)
		if r.logger != nil {
			r.logger.Debug("blocked previous action after cancelled selection",
				zap.String("kind", r.lastActionKind.String()),
				zap.String("value", r.lastActionValue),
			)
		}
	}

	if req.Kind == KindActionChoice || req.Kind == KindCardActionChoice {
		r.lastActionKind = req.Kind
		r.lastActionText = req.Text
		r.lastActionValue = value
		r.hasLastAction = value != ""
	}
}
