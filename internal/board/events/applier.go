package events

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/board/counters"
	"github.com/swccgarena/rando/internal/cards"
	"github.com/swccgarena/rando/internal/gemp"
	"go.uber.org/zap"
)

// Hooks are the callbacks fired synchronously during event application.
// Collaborators (achievements, chat, persistence) consume them; the applier
// never depends on what they do. Nil hooks are skipped.
type Hooks struct {
	// CardPlaced fires on the first placement of a card instance only;
	// re-placements and zone moves of a known instance do not repeat it.
	CardPlaced    func(templateID string, zone board.Zone, owner string)
	BattleStarted func(locationIndex int)
	BattleDamage  func(amount int)
	SideDetected  func(own, opponent cards.Side)
	TurnChanged   func(turn int)
	PhaseChanged  func(phase board.Phase)
	GameEnded     func(winner, reason string)
}

var (
	winnerPattern = regexp.MustCompile(`^(.+?) is the winner due to: (.+?)\.?$`)
	loserPattern  = regexp.MustCompile(`^(.+?) lost due to: (.+?)\.?$`)

	// The damage amount is the integer token immediately preceding the
	// literal word "battle".
	battleDamagePattern = regexp.MustCompile(`(\d+)\s+battle\b`)
)

// Applier consumes ordered events one at a time and mutates the board
// model. Decision events are not handled here; the session routes them to
// the resolver.
type Applier struct {
	logger *zap.Logger
	model  *board.Model
	hooks  Hooks

	// Highest battle damage seen during the current battle. The same battle
	// re-reports increasing damage as destiny draws resolve; only the final
	// high-water value is surfaced, at battle end.
	battleDamageHighWater int
}

// NewApplier creates an applier bound to one board model.
func NewApplier(model *board.Model, hooks Hooks, logger *zap.Logger) *Applier {
	return &Applier{
		logger: logger,
		model:  model,
		hooks:  hooks,
	}
}

// Apply dispatches one event to its handler. Malformed or unexpected events
// are logged and skipped; the board is left as it was.
func (a *Applier) Apply(raw *gemp.RawEvent) {
	switch KindOf(raw.Type) {
	case KindParticipants:
		a.applyParticipants(raw)
	case KindTurnChange:
		a.applyTurnChange(raw)
	case KindPhaseChange:
		a.applyPhaseChange(raw)
	case KindCardPlaced:
		a.applyPlacement(raw)
	case KindCardRemoved:
		a.applyRemoval(raw)
	case KindCardMoved:
		a.applyMove(raw)
	case KindGameStats:
		a.applyGameStats(raw)
	case KindBattleStart:
		a.applyBattleStart(raw)
	case KindBattleEnd:
		a.applyBattleEnd(raw)
	case KindMessage:
		a.applyMessage(raw)
	case KindDecision:
		// Routed to the decision resolver by the session loop.
	case KindGameEnded:
		a.applyGameEnded(raw)
	case KindUnknown:
		if a.logger != nil {
			a.logger.Warn("skipping event of unknown type", zap.String("type", raw.Type))
		}
	}
}

func (a *Applier) applyParticipants(raw *gemp.RawEvent) {
	for _, name := range strings.Split(raw.AllParticipants, ",") {
		name = strings.TrimSpace(name)
		if name != "" && name != a.model.OwnName() {
			a.model.SetOpponentName(name)
		}
	}
	if raw.ParticipantID != "" && raw.ParticipantID != a.model.OwnName() {
		a.model.SetOpponentName(raw.ParticipantID)
	}
}

func (a *Applier) applyTurnChange(raw *gemp.RawEvent) {
	a.model.SetTurn(a.model.TurnNumber(), raw.ParticipantID)
}

func (a *Applier) applyPhaseChange(raw *gemp.RawEvent) {
	previousTurn := a.model.TurnNumber()
	turn := a.model.SetPhase(raw.Phase)
	if turn > 0 && turn != previousTurn {
		a.model.SetTurn(turn, a.model.TurnOwner())
		if a.hooks.TurnChanged != nil {
			a.hooks.TurnChanged(turn)
		}
	}
	if a.hooks.PhaseChanged != nil {
		a.hooks.PhaseChanged(a.model.Phase())
	}
}

func (a *Applier) applyPlacement(raw *gemp.RawEvent) {
	if raw.CardID == "" {
		if a.logger != nil {
			a.logger.Warn("placement event without card id")
		}
		return
	}

	zone := board.ParseZone(raw.Zone)
	_, seen := a.model.Card(raw.CardID)

	if tpl, ok := a.model.TemplateByID(raw.BlueprintID); ok && tpl.IsLocation() && zone == board.ZoneAtLocation {
		a.placeLocation(raw, tpl)
	} else {
		a.model.ApplyPlacement(
			raw.CardID,
			raw.BlueprintID,
			zone,
			raw.ParticipantID,
			raw.LocationIndexInt(),
			raw.TargetCardID,
			raw.FlippedBool(),
		)
	}

	a.detectSide(raw, zone)

	if a.hooks.CardPlaced != nil && !seen {
		a.hooks.CardPlaced(raw.BlueprintID, zone, raw.ParticipantID)
	}
}

// placeLocation turns a location placement into a slot insertion. The slot's
// display names and terrain flags come from the template.
func (a *Applier) placeLocation(raw *gemp.RawEvent, tpl *cards.Template) {
	index := raw.LocationIndexInt()
	if index < 0 {
		if a.logger != nil {
			a.logger.Warn("location placement without index", zap.String("card_id", raw.CardID))
		}
		return
	}

	slot := board.NewPlaceholder(index)
	slot.System = tpl.System
	slot.Site = tpl.Site
	if raw.System != "" {
		slot.System = raw.System
	}
	if raw.Site != "" {
		slot.Site = raw.Site
	}
	slot.Space = tpl.Space
	slot.Ground = !tpl.Space

	a.model.PlaceLocation(raw.CardID, raw.BlueprintID, raw.ParticipantID, slot)
}

// detectSide infers the owning player's side from hand placements only.
// Other zones can hold cards whose side is altered by in-game effects; the
// hand is the one zone guaranteed to reflect the true owning side.
func (a *Applier) detectSide(raw *gemp.RawEvent, zone board.Zone) {
	if zone != board.ZoneHand || raw.ParticipantID != a.model.OwnName() {
		return
	}
	tpl, ok := a.model.TemplateByID(raw.BlueprintID)
	if !ok || tpl.Side == cards.SideNeutral {
		return
	}
	if a.model.SetOwnSide(tpl.Side) {
		if a.logger != nil {
			a.logger.Info("side detected",
				zap.String("own_side", string(tpl.Side)),
				zap.String("opponent_side", string(tpl.Side.Opponent())),
			)
		}
		if a.hooks.SideDetected != nil {
			a.hooks.SideDetected(tpl.Side, tpl.Side.Opponent())
		}
	}
}

func (a *Applier) applyRemoval(raw *gemp.RawEvent) {
	ids := raw.CardID
	if raw.OtherCardIDs != "" {
		ids = ids + "," + raw.OtherCardIDs
	}
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			a.model.RemoveCard(id)
		}
	}
}

func (a *Applier) applyMove(raw *gemp.RawEvent) {
	if raw.CardID == "" {
		if a.logger != nil {
			a.logger.Warn("move event without card id")
		}
		return
	}
	card, ok := a.model.Card(raw.CardID)
	owner := raw.ParticipantID
	if ok && owner == "" {
		owner = card.Owner
	}
	a.model.ApplyPlacement(
		raw.CardID,
		"",
		board.ParseZone(raw.Zone),
		owner,
		raw.LocationIndexInt(),
		raw.TargetCardID,
		raw.FlippedBool(),
	)
}

func (a *Applier) applyGameStats(raw *gemp.RawEvent) {
	for _, pc := range raw.PlayerCounts {
		a.model.SetPileCount(pc.ParticipantID, counters.PileReserveDeck, pc.ReserveDeck)
		a.model.SetPileCount(pc.ParticipantID, counters.PileForcePile, pc.ForcePile)
		a.model.SetPileCount(pc.ParticipantID, counters.PileUsedPile, pc.UsedPile)
		a.model.SetPileCount(pc.ParticipantID, counters.PileLostPile, pc.LostPile)
		a.model.SetPileCount(pc.ParticipantID, counters.PileOutOfPlay, pc.OutOfPlay)
		a.model.SetPileCount(pc.ParticipantID, counters.PileHand, pc.HandSize)
		a.model.SetRemainingAttrition(pc.ParticipantID, pc.Attrition)
		a.model.SetRemainingDamage(pc.ParticipantID, pc.BattleDamage)
	}
	for _, lp := range raw.LocationPowers {
		a.model.SetLocationPower(lp.ParticipantID, lp.Index, lp.Power)
	}
}

func (a *Applier) applyBattleStart(raw *gemp.RawEvent) {
	index := raw.LocationIndexInt()
	a.model.StartBattle(index)
	a.battleDamageHighWater = 0
	if a.hooks.BattleStarted != nil {
		a.hooks.BattleStarted(index)
	}
	if a.logger != nil {
		a.logger.Info("battle started", zap.Int("location_index", index))
	}
}

func (a *Applier) applyBattleEnd(raw *gemp.RawEvent) {
	if a.battleDamageHighWater > 0 && a.hooks.BattleDamage != nil {
		a.hooks.BattleDamage(a.battleDamageHighWater)
	}
	a.battleDamageHighWater = 0
	a.model.EndBattle()
	if a.logger != nil {
		a.logger.Info("battle ended")
	}
}

func (a *Applier) applyMessage(raw *gemp.RawEvent) {
	text := strings.TrimSpace(raw.Message)
	if text == "" {
		return
	}

	if m := winnerPattern.FindStringSubmatch(text); m != nil {
		a.recordResult(m[1], m[2], true)
		return
	}
	if m := loserPattern.FindStringSubmatch(text); m != nil {
		winner := a.model.OpponentName()
		if m[1] != a.model.OwnName() {
			winner = a.model.OwnName()
		}
		a.recordResult(winner, m[2], false)
		return
	}

	if m := battleDamagePattern.FindStringSubmatch(text); m != nil && a.model.BattleInProgress() {
		if amount, err := strconv.Atoi(m[1]); err == nil && amount > a.battleDamageHighWater {
			a.battleDamageHighWater = amount
		}
	}
}

// applyGameEnded closes out the game even when no parseable result message
// arrived. A result recorded from an earlier message is kept; without one
// the winner stays unknown, but the session loop can still stop.
func (a *Applier) applyGameEnded(raw *gemp.RawEvent) {
	if a.model.GameOver() {
		return
	}
	a.recordResult(raw.ParticipantID, "game ended", false)
}

func (a *Applier) recordResult(winner, reason string, fromWinnerMessage bool) {
	alreadyOver := a.model.GameOver()
	a.model.RecordResult(winner, reason, fromWinnerMessage)
	if !alreadyOver && a.model.GameOver() {
		if a.logger != nil {
			a.logger.Info("game result recorded",
				zap.String("winner", a.model.Winner()),
				zap.String("reason", a.model.EndReason()),
				zap.Bool("won", a.model.Won()),
			)
		}
		if a.hooks.GameEnded != nil {
			a.hooks.GameEnded(a.model.Winner(), a.model.EndReason())
		}
	}
}
