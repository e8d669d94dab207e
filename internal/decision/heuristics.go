package decision

import (
	"sort"
	"strconv"
	"strings"

	"github.com/swccgarena/rando/internal/cards"
)

// typeRank orders card types by how much a card of that type is usually
// worth taking into hand.
var typeRank = map[cards.CardType]int{
	cards.TypeCharacter: 6,
	cards.TypeStarship:  5,
	cards.TypeVehicle:   4,
	cards.TypeWeapon:    3,
	cards.TypeInterrupt: 2,
	cards.TypeEffect:    1,
}

// resolveHeuristic is the deterministic per-kind fallback stage, used when
// no strategy produced a result.
func (r *Resolver) resolveHeuristic(req *Request) stageResult {
	switch req.Kind {
	case KindInteger:
		if req.DefaultValue != "" {
			if n, err := strconv.Atoi(req.DefaultValue); err == nil && n >= req.Min && (req.Max < req.Min || n <= req.Max) {
				return stageResult{value: req.DefaultValue, ok: true}
			}
		}
		return stageResult{value: strconv.Itoa(req.Min), ok: true}

	case KindMultipleChoice:
		if mentionsSurrender(req.Text) && len(req.Options) > 1 {
			return stageResult{value: "1", ok: true}
		}
		if len(req.Options) > 0 {
			return stageResult{value: "0", ok: true}
		}
		return stageResult{}

	case KindActionChoice, KindCardActionChoice:
		if len(req.ActionIDs) == 0 {
			if req.PassAllowed() {
				return stageResult{value: "", ok: true}
			}
			return stageResult{}
		}
		if req.PassAllowed() && strings.Contains(strings.ToLower(req.Text), "optional") {
			return stageResult{value: "", ok: true}
		}
		return stageResult{value: req.ActionIDs[0], ok: true}

	case KindCardSelection:
		return r.selectCard(req)

	case KindArbitraryCards:
		return r.selectArbitraryCards(req)

	default:
		return stageResult{}
	}
}

// selectCard picks the first selectable card not already targeted this
// battle, so repeated targeting prompts cycle through the board instead of
// hammering one card.
func (r *Resolver) selectCard(req *Request) stageResult {
	ids := req.SelectableCardIDs()
	if len(ids) == 0 {
		if req.PassAllowed() {
			return stageResult{value: "", ok: true}
		}
		return stageResult{}
	}

	choice := ids[0]
	if r.board != nil && r.board.BattleInProgress() {
		for _, id := range ids {
			if !r.board.WasTargeted(id) {
				choice = id
				break
			}
		}
		r.board.MarkTargeted(choice)
	}
	return stageResult{value: choice, ok: true}
}

// selectArbitraryCards picks the required number of selectable cards,
// preferring higher-value card types when the prompt is a take-into-hand
// style choice.
func (r *Resolver) selectArbitraryCards(req *Request) stageResult {
	type ranked struct {
		id   string
		rank int
	}

	var candidates []ranked
	for _, opt := range req.Options {
		if opt.CardID == "" || !opt.Selectable {
			continue
		}
		rank := 0
		if r.board != nil {
			if tpl, ok := r.board.TemplateByID(opt.BlueprintID); ok {
				rank = typeRank[tpl.Type]*100 + tpl.Power
			}
		}
		candidates = append(candidates, ranked{id: opt.CardID, rank: rank})
	}

	if len(candidates) == 0 {
		if req.PassAllowed() {
			return stageResult{value: "", ok: true}
		}
		return stageResult{}
	}

	// Stable sort keeps arrival order among equals.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rank > candidates[j].rank
	})

	count := req.Min
	if count < 1 {
		count = 1
	}
	if count > len(candidates) {
		count = len(candidates)
	}
	if req.Max >= 1 && count > req.Max {
		count = req.Max
	}

	ids := make([]string, 0, count)
	for _, c := range candidates[:count] {
		ids = append(ids, c.id)
	}
	return stageResult{value: strings.Join(ids, ","), ok: true}
}
