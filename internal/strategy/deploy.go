package strategy

import (
	"fmt"
	"strings"

	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/decision"
)

// DeployPower ranks deploy actions during the deploy phase by the printed
// power of the card being deployed, so the strongest presence hits the table
// first while Force still remains to pay for it.
type DeployPower struct{}

// NewDeployPower creates the deploy-power strategy.
func NewDeployPower() *DeployPower {
	return &DeployPower{}
}

func (s *DeployPower) Name() string { return "deploy-power" }

// CanEvaluate reports whether the request is an action choice during the
// deploy phase with at least one deploy action on offer.
func (s *DeployPower) CanEvaluate(ctx *decision.Context) bool {
	if ctx == nil || ctx.Board == nil || ctx.Request == nil {
		return false
	}
	if ctx.Request.Kind != decision.KindActionChoice && ctx.Request.Kind != decision.KindCardActionChoice {
		return false
	}
	if ctx.Board.Phase() != board.PhaseDeploy {
		return false
	}
	for _, opt := range ctx.Request.Options {
		if isDeployAction(opt) {
			return true
		}
	}
	return false
}

// Evaluate scores each deploy action by the deployed card's power. Actions
// without a resolvable template score zero so they stay legal but never
// outrank a known card.
func (s *DeployPower) Evaluate(ctx *decision.Context) []decision.EvaluatedAction {
	var out []decision.EvaluatedAction
	for _, opt := range ctx.Request.Options {
		if !isDeployAction(opt) || opt.ActionID == "" {
			continue
		}
		score := 0.0
		reasons := []string{"deploy action"}
		if tpl, ok := ctx.Board.TemplateByID(opt.BlueprintID); ok {
			score = float64(tpl.Power)
			reasons = append(reasons, fmt.Sprintf("power %d", tpl.Power))
		}
		out = append(out, decision.EvaluatedAction{
			Value:   opt.ActionID,
			Score:   score,
			Reasons: reasons,
		})
	}
	return out
}

func isDeployAction(opt decision.Option) bool {
	return strings.Contains(strings.ToLower(opt.ActionText), "deploy")
}
