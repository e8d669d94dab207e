package decision

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swccgarena/rando/internal/board"
)

type fakeScorer struct {
	name    string
	applies bool
	actions []EvaluatedAction
}

func (f *fakeScorer) Name() string                { return f.name }
func (f *fakeScorer) CanEvaluate(*Context) bool   { return f.applies }
func (f *fakeScorer) Evaluate(*Context) []EvaluatedAction {
	return f.actions
}

type panickingScorer struct{}

func (panickingScorer) Name() string              { return "panics" }
func (panickingScorer) CanEvaluate(*Context) bool { return true }
func (panickingScorer) Evaluate(*Context) []EvaluatedAction {
	panic("scorer bug")
}

func newTestResolver(scorers ...Scorer) *Resolver {
	b := board.NewModel("me", nil, nil)
	tracker := NewTracker(TrackerConfig{}, nil)
	return NewResolver(b, tracker, scorers, rand.New(rand.NewSource(7)), nil)
}

func TestResolveIntegerWithoutStrategies(t *testing.T) {
	r := newTestResolver()
	req := &Request{ID: "1", Kind: KindInteger, Min: 2, Max: 6, NoPass: true}

	result := r.Resolve(req)
	assert.Equal(t, "2", result.Value)
	assert.Equal(t, TimingDeliberate, result.Timing)
	assert.False(t, result.ConsiderConcede)
}

func TestResolvePicksHighestScoringCandidate(t *testing.T) {
	scorer := &fakeScorer{name: "test", applies: true, actions: []EvaluatedAction{
		{Value: "a0", Score: 1.5},
		{Value: "a1", Score: 4.0},
	}}
	r := newTestResolver(scorer)
	req := actionRequest(KindActionChoice, true, "a0", "a1")

	result := r.Resolve(req)
	assert.Equal(t, "a1", result.Value)
	assert.Equal(t, "strategy", result.Source)
}

func TestResolveSkipsBlockedWinner(t *testing.T) {
	scorer := &fakeScorer{name: "test", applies: true, actions: []EvaluatedAction{
		{Value: "a0", Score: 4.0},
		{Value: "a1", Score: 1.0},
	}}
	r := newTestResolver(scorer)
	r.tracker.Block(KindActionChoice, "Choose", "a0")

	req := actionRequest(KindActionChoice, true, "a0", "a1")
	req.Text = "Choose"

	result := r.Resolve(req)
	assert.Equal(t, "a1", result.Value, "the blocked winner must yield to the best unblocked candidate")
}

func TestResolveDegradesWhenScorerPanics(t *testing.T) {
	r := newTestResolver(panickingScorer{})
	req := actionRequest(KindActionChoice, true, "a0")

	result := r.Resolve(req)
	assert.Equal(t, "a0", result.Value)
	assert.NotEqual(t, "strategy", result.Source)
}

func TestSevereLoopForcesDivergentValue(t *testing.T) {
	r := newTestResolver()
	req := cardRequest(KindCardSelection, true, "A", "B")
	req.Text = "Choose a card"

	var last Result
	for i := 0; i < 20; i++ {
		last = r.Resolve(req)
	}

	assert.Equal(t, "B", last.Value,
		"after repeating A into a severe loop the resolver must diverge to B")
}

func TestIntegerEnumerationIsBounded(t *testing.T) {
	r := newTestResolver()
	req := &Request{ID: "1", Kind: KindInteger, Min: 0, Max: 1_000_000, NoPass: true}

	values := r.legalValues(req)
	assert.Len(t, values, integerEnumerationCap)
	assert.Equal(t, "1000000", values[0], "divergence starts from the top of the range")
}

func TestSevereIntegerLoopDivergesWithinHugeBounds(t *testing.T) {
	r := newTestResolver()
	req := &Request{ID: "1", Kind: KindInteger, Min: 0, Max: 1_000_000, NoPass: true, Text: "Choose amount"}

	var last Result
	for i := 0; i < 12; i++ {
		last = r.Resolve(req)
	}

	assert.NotEqual(t, "0", last.Value,
		"a severe loop on the minimum must diverge without enumerating the full range")
}

func TestCriticalLoopSignalsConcede(t *testing.T) {
	r := newTestResolver()
	req := &Request{ID: "1", Kind: KindInteger, Min: 0, Max: 0, NoPass: true, Text: "Stuck"}

	var last Result
	for i := 0; i < 40; i++ {
		last = r.Resolve(req)
	}
	assert.True(t, last.ConsiderConcede)
}

func TestTimingFollowsServerHint(t *testing.T) {
	r := newTestResolver()

	fast := r.Resolve(&Request{ID: "1", Kind: KindInteger, NoLongDelay: true})
	assert.Equal(t, TimingFast, fast.Timing)

	slow := r.Resolve(&Request{ID: "2", Kind: KindInteger})
	assert.Equal(t, TimingDeliberate, slow.Timing)
}

func TestCancelledSelectionBlocksPreviousAction(t *testing.T) {
	r := newTestResolver()

	action := actionRequest(KindCardActionChoice, true, "a7")
	action.Text = "Choose an action"
	result := r.Resolve(action)
	require.Equal(t, "a7", result.Value)

	// The follow-up selection offers nothing and passing is legal: the
	// action that led here evidently failed.
	selection := &Request{ID: "2", Kind: KindCardSelection, Text: "Choose target"}
	r.Resolve(selection)

	assert.True(t, r.tracker.BlockedValues(KindCardActionChoice, "Choose an action")["a7"])
}

func TestUnknownKindStillResolves(t *testing.T) {
	r := newTestResolver()
	req := &Request{ID: "1", Kind: KindUnknown, NoPass: true}

	result := r.Resolve(req)
	assert.Equal(t, fallbackToken, result.Value)
	assert.Equal(t, "safety-net", result.Source)
}
