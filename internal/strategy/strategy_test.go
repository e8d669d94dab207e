package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/cards"
	"github.com/swccgarena/rando/internal/decision"
)

func testBoard() *board.Model {
	lib := cards.NewLibrary(nil)
	lib.Add(&cards.Template{ID: "1_1", Title: "Darth Vader", Side: cards.SideDark, Type: cards.TypeCharacter, Power: 6})
	lib.Add(&cards.Template{ID: "1_2", Title: "Stormtrooper", Side: cards.SideDark, Type: cards.TypeCharacter, Power: 1})

	m := board.NewModel("vader_fan", lib, nil)
	m.SetOpponentName("rebel_scum")
	return m
}

func deployRequest() *decision.Request {
	return &decision.Request{
		Kind: decision.KindCardActionChoice,
		Text: "Choose action to perform",
		Options: []decision.Option{
			{ActionID: "1", ActionText: "Deploy Stormtrooper", BlueprintID: "1_2"},
			{ActionID: "2", ActionText: "Deploy Darth Vader", BlueprintID: "1_1"},
			{ActionID: "3", ActionText: "Activate Force"},
		},
		ActionIDs: []string{"1", "2", "3"},
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(nil)
	assert.True(t, r.Register(NewDeployPower()))
	assert.False(t, r.Register(NewDeployPower()))
	assert.Len(t, r.Scorers(), 1)
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := Default(nil)
	scorers := r.Scorers()
	require.Len(t, scorers, 2)
	assert.Equal(t, "battle-initiation", scorers[0].Name())
	assert.Equal(t, "deploy-power", scorers[1].Name())
}

func TestDeployPowerPrefersStrongerCard(t *testing.T) {
	b := testBoard()
	b.SetPhase("Deploy (3)")
	ctx := &decision.Context{Request: deployRequest(), Board: b}

	s := NewDeployPower()
	require.True(t, s.CanEvaluate(ctx))

	actions := s.Evaluate(ctx)
	require.Len(t, actions, 2, "only deploy actions are scored")

	best := actions[0]
	for _, a := range actions[1:] {
		if a.Score > best.Score {
			best = a
		}
	}
	assert.Equal(t, "2", best.Value)
	assert.Equal(t, 6.0, best.Score)
}

func TestDeployPowerIgnoresOtherPhases(t *testing.T) {
	b := testBoard()
	b.SetPhase("Battle (3)")
	ctx := &decision.Context{Request: deployRequest(), Board: b}
	assert.False(t, NewDeployPower().CanEvaluate(ctx))
}

func TestBattleInitiationScoresPowerMargin(t *testing.T) {
	b := testBoard()
	b.SetPhase("Battle (5)")
	b.SetTurn(5, "vader_fan")
	b.SetLocationPower("vader_fan", 2, 9)
	b.SetLocationPower("rebel_scum", 2, 4)

	req := &decision.Request{
		Kind: decision.KindActionChoice,
		Text: "Choose action to perform",
		Options: []decision.Option{
			{ActionID: "11", ActionText: "Initiate battle at Tatooine"},
		},
		ActionIDs: []string{"11"},
	}
	ctx := &decision.Context{Request: req, Board: b}

	s := NewBattleInitiation()
	require.True(t, s.CanEvaluate(ctx))

	actions := s.Evaluate(ctx)
	require.Len(t, actions, 1)
	assert.Equal(t, "11", actions[0].Value)
	assert.Equal(t, 5.0, actions[0].Score)
}

func TestBattleInitiationNegativeMarginScoresBelowZero(t *testing.T) {
	b := testBoard()
	b.SetPhase("Battle (5)")
	b.SetTurn(5, "vader_fan")
	b.SetLocationPower("vader_fan", 0, 2)
	b.SetLocationPower("rebel_scum", 0, 8)

	req := &decision.Request{
		Kind: decision.KindActionChoice,
		Text: "Choose action to perform",
		Options: []decision.Option{
			{ActionID: "11", ActionText: "Initiate battle at Hoth"},
		},
		ActionIDs: []string{"11"},
	}
	ctx := &decision.Context{Request: req, Board: b}

	actions := NewBattleInitiation().Evaluate(ctx)
	require.Len(t, actions, 1)
	assert.Less(t, actions[0].Score, 0.0)
}

func TestBattleInitiationRequiresOwnTurn(t *testing.T) {
	b := testBoard()
	b.SetPhase("Battle (5)")
	b.SetTurn(5, "rebel_scum")

	req := &decision.Request{
		Kind: decision.KindActionChoice,
		Options: []decision.Option{
			{ActionID: "11", ActionText: "Initiate battle at Hoth"},
		},
	}
	assert.False(t, NewBattleInitiation().CanEvaluate(&decision.Context{Request: req, Board: b}))
}
