package strategy

import (
	"fmt"
	"strings"

	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/decision"
)

// BattleInitiation decides whether to start a battle on our own turn. It
// compares total committed power across the location line: a positive margin
// favors initiating, a deficit scores the action below zero so the resolver
// can decline when passing is legal.
type BattleInitiation struct{}

// NewBattleInitiation creates the battle-initiation strategy.
func NewBattleInitiation() *BattleInitiation {
	return &BattleInitiation{}
}

func (s *BattleInitiation) Name() string { return "battle-initiation" }

// CanEvaluate reports whether the request offers a battle action during our
// own battle phase.
func (s *BattleInitiation) CanEvaluate(ctx *decision.Context) bool {
	if ctx == nil || ctx.Board == nil || ctx.Request == nil {
		return false
	}
	if ctx.Request.Kind != decision.KindActionChoice && ctx.Request.Kind != decision.KindCardActionChoice {
		return false
	}
	if ctx.Board.Phase() != board.PhaseBattle || !ctx.Board.IsOwnTurn() {
		return false
	}
	for _, opt := range ctx.Request.Options {
		if isBattleAction(opt) {
			return true
		}
	}
	return false
}

// Evaluate scores battle actions by the power margin over the opponent.
func (s *BattleInitiation) Evaluate(ctx *decision.Context) []decision.EvaluatedAction {
	b := ctx.Board
	margin := b.TotalPower(b.OwnName()) - b.TotalPower(b.OpponentName())

	var out []decision.EvaluatedAction
	for _, opt := range ctx.Request.Options {
		if !isBattleAction(opt) || opt.ActionID == "" {
			continue
		}
		out = append(out, decision.EvaluatedAction{
			Value:   opt.ActionID,
			Score:   float64(margin),
			Reasons: []string{fmt.Sprintf("power margin %d", margin)},
		})
	}
	return out
}

func isBattleAction(opt decision.Option) bool {
	return strings.Contains(strings.ToLower(opt.ActionText), "battle")
}
