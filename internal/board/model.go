package board

import (
	"fmt"

	"github.com/swccgarena/rando/internal/board/counters"
	"github.com/swccgarena/rando/internal/cards"
	"go.uber.org/zap"
)

// Model owns the mutable representation of all cards, locations, zones and
// counters for one game session. It has exactly one writer (the event
// applier); decision code reads it between event batches, so no internal
// locking is needed.
//
// All card instances live in the cards map keyed by instance id. Attachment
// and location membership are id references resolved through that map, which
// keeps removal a pure map operation and rules out reference cycles.
type Model struct {
	logger *zap.Logger
	lookup cards.Lookup

	ownName      string
	opponentName string
	ownSide      cards.Side

	cards     map[string]*CardInstance
	locations []*LocationSlot
	hand      []string

	tallies       map[string]*counters.Tallies
	locationPower map[string]map[int]int

	phaseLabel string
	phase      Phase
	turnNumber int
	turnOwner  string

	battleInProgress bool
	battleLocation   int
	targetedInBattle map[string]bool
	remainingAttrition map[string]int
	remainingDamage    map[string]int

	gameOver bool
	winner   string
	endReason string
	resultFromWinnerMessage bool
}

// NewModel creates an empty board for one game session. ownName is the
// player this agent is playing as; the opponent's name is learned from the
// participants event.
func NewModel(ownName string, lookup cards.Lookup, logger *zap.Logger) *Model {
	return &Model{
		logger:             logger,
		lookup:             lookup,
		ownName:            ownName,
		cards:              make(map[string]*CardInstance),
		locations:          make([]*LocationSlot, 0),
		hand:               make([]string, 0),
		tallies:            make(map[string]*counters.Tallies),
		locationPower:      make(map[string]map[int]int),
		battleLocation:     NoLocation,
		targetedInBattle:   make(map[string]bool),
		remainingAttrition: make(map[string]int),
		remainingDamage:    make(map[string]int),
	}
}

// OwnName returns the owning player's name.
func (m *Model) OwnName() string { return m.ownName }

// OpponentName returns the opponent's name, empty until participants are known.
func (m *Model) OpponentName() string { return m.opponentName }

// SetOpponentName records the opponent's participant name.
func (m *Model) SetOpponentName(name string) { m.opponentName = name }

// OwnSide returns the owning player's detected side, SideNeutral until
// detection has fired.
func (m *Model) OwnSide() cards.Side { return m.ownSide }

// SetOwnSide records the detected side. Idempotent: once detected the side
// never changes, later calls are ignored.
func (m *Model) SetOwnSide(side cards.Side) bool {
	if m.ownSide != cards.SideNeutral || side == cards.SideNeutral {
		return false
	}
	m.ownSide = side
	return true
}

// Card returns the card instance for the given id.
func (m *Model) Card(id string) (*CardInstance, bool) {
	c, ok := m.cards[id]
	return c, ok
}

// CardCount returns the number of tracked card instances.
func (m *Model) CardCount() int { return len(m.cards) }

// Hand returns the owning player's hand as card instances, in arrival order.
func (m *Model) Hand() []*CardInstance {
	result := make([]*CardInstance, 0, len(m.hand))
	for _, id := range m.hand {
		if c, ok := m.cards[id]; ok {
			result = append(result, c)
		}
	}
	return result
}

// Location returns the slot at the given index.
func (m *Model) Location(index int) (*LocationSlot, bool) {
	if index < 0 || index >= len(m.locations) {
		return nil, false
	}
	return m.locations[index], true
}

// LocationCount returns the number of slots on the location line,
// placeholders included.
func (m *Model) LocationCount() int { return len(m.locations) }

// ApplyPlacement places or re-places a card instance. The card is created on
// first sight. templateID may be empty on re-placements; attachedTo is only
// meaningful for ZoneAttached. Operations referencing unknown targets log
// and no-op: event ordering cannot be assumed reliable and the board must
// stay valid even when incomplete.
func (m *Model) ApplyPlacement(id, templateID string, zone Zone, owner string, locationIndex int, attachedTo string, flipped bool) {
	card, ok := m.cards[id]
	if !ok {
		card = NewCardInstance(id, templateID, owner)
		m.cards[id] = card
	}
	if templateID != "" {
		card.TemplateID = templateID
	}
	if owner != "" {
		card.Owner = owner
	}
	card.Flipped = flipped
	m.resolveTemplate(card)

	switch zone {
	case ZoneAtLocation:
		if locationIndex < 0 {
			m.logWarn("placement at negative location index", id, zone)
			return
		}
		m.ensureSlot(locationIndex)
		m.detach(card)
		slot := m.locations[locationIndex]
		if card.Owner == m.ownName {
			slot.OwnCards = append(slot.OwnCards, id)
		} else {
			slot.OpponentCards = append(slot.OpponentCards, id)
		}
		card.Zone = ZoneAtLocation
		card.LocationIndex = locationIndex

	case ZoneAttached:
		target, ok := m.cards[attachedTo]
		if !ok {
			m.logWarn("attach target does not exist", id, zone)
			return
		}
		m.detach(card)
		card.AttachedTo = target.ID
		target.Attached[card.ID] = true
		card.Zone = ZoneAttached
		card.LocationIndex = target.LocationIndex

	case ZoneHand:
		// Only the owning player's hand is tracked; the opponent's hand
		// contents are not visible anyway.
		m.detach(card)
		card.Zone = ZoneHand
		if card.Owner == m.ownName && !containsID(m.hand, id) {
			m.hand = append(m.hand, id)
		}

	default:
		m.detach(card)
		card.Zone = zone
	}
}

// RemoveCard removes a card instance from the board. A location card demotes
// its slot to an empty placeholder instead of shifting indices. Attached
// children are detached but not deleted; they receive their own removal or
// placement events.
func (m *Model) RemoveCard(id string) {
	card, ok := m.cards[id]
	if !ok {
		m.logWarn("removal of unknown card", id, ZoneUnknown)
		return
	}

	if slot := m.slotByInstance(id); slot != nil {
		slot.clearLocation()
		delete(m.cards, id)
		return
	}

	for childID := range card.Attached {
		if child, ok := m.cards[childID]; ok {
			child.AttachedTo = ""
		}
	}

	m.detach(card)
	delete(m.cards, id)
}

// InsertLocation places a location slot at slot.Index. A placeholder at that
// index is replaced in place and keeps any cards already recorded there. An
// index past the end extends the line. A real location at that index forces
// a genuine insertion: every slot at or beyond the index shifts up by one
// and every card whose stored location index falls in the shifted range is
// updated to match. The protocol can declare new locations after cards have
// already been placed at higher indices, so the shift must cover cards too.
func (m *Model) InsertLocation(slot *LocationSlot) {
	if slot == nil || slot.Index < 0 {
		m.logWarn("insert of invalid location slot", "", ZoneUnknown)
		return
	}

	index := slot.Index

	if index >= len(m.locations) {
		m.ensureSlot(index)
		existing := m.locations[index]
		m.replaceSlot(existing, slot)
		return
	}

	existing := m.locations[index]
	if existing.IsPlaceholder() {
		m.replaceSlot(existing, slot)
		return
	}

	// Genuine insertion: shift everything at or beyond the index.
	m.locations = append(m.locations, nil)
	copy(m.locations[index+1:], m.locations[index:])
	m.locations[index] = slot
	for i := index + 1; i < len(m.locations); i++ {
		m.locations[i].Index = i
	}
	for _, card := range m.cards {
		if card.ID == slot.InstanceID {
			continue
		}
		if card.LocationIndex >= index {
			card.LocationIndex++
		}
	}
}

// PlaceLocation creates the card instance for a location card and inserts
// its slot in one step, so that the slot's instance id and the card map
// stay in agreement.
func (m *Model) PlaceLocation(id, templateID, owner string, slot *LocationSlot) {
	card, ok := m.cards[id]
	if !ok {
		card = NewCardInstance(id, templateID, owner)
		m.cards[id] = card
	}
	if templateID != "" {
		card.TemplateID = templateID
	}
	m.resolveTemplate(card)
	slot.InstanceID = id
	slot.TemplateID = card.TemplateID
	m.InsertLocation(slot)
	card.Zone = ZoneAtLocation
	card.LocationIndex = slot.Index
}

// replaceSlot swaps a placeholder for a real location, inheriting any cards
// that were placed there before the location itself was declared.
func (m *Model) replaceSlot(placeholder, slot *LocationSlot) {
	slot.OwnCards = append(slot.OwnCards, placeholder.OwnCards...)
	slot.OpponentCards = append(slot.OpponentCards, placeholder.OpponentCards...)
	m.locations[placeholder.Index] = slot
	slot.Index = placeholder.Index
}

// detach removes a card from its parent's attached set, its location slot
// lists and the hand, and clears its own back-references. Attachment stays
// bidirectionally consistent through every mutation.
func (m *Model) detach(card *CardInstance) {
	if card.AttachedTo != "" {
		if parent, ok := m.cards[card.AttachedTo]; ok {
			delete(parent.Attached, card.ID)
		}
		card.AttachedTo = ""
	}
	if card.LocationIndex != NoLocation {
		if slot, ok := m.Location(card.LocationIndex); ok {
			slot.OwnCards = removeID(slot.OwnCards, card.ID)
			slot.OpponentCards = removeID(slot.OpponentCards, card.ID)
		}
		card.LocationIndex = NoLocation
	}
	m.hand = removeID(m.hand, card.ID)
}

// ensureSlot extends the location line with placeholders so that index is
// addressable.
func (m *Model) ensureSlot(index int) {
	for len(m.locations) <= index {
		m.locations = append(m.locations, NewPlaceholder(len(m.locations)))
	}
}

// slotByInstance returns the slot whose location card has the given
// instance id.
func (m *Model) slotByInstance(id string) *LocationSlot {
	for _, slot := range m.locations {
		if slot.InstanceID == id {
			return slot
		}
	}
	return nil
}

// TemplateByID resolves a template id through the model's lookup.
func (m *Model) TemplateByID(id string) (*cards.Template, bool) {
	if m.lookup == nil || id == "" {
		return nil, false
	}
	return m.lookup.Template(id)
}

// resolveTemplate loads static attributes for a card if not already known.
func (m *Model) resolveTemplate(card *CardInstance) {
	if card.Template != nil || card.TemplateID == "" || m.lookup == nil {
		return
	}
	if tpl, ok := m.lookup.Template(card.TemplateID); ok {
		card.Template = tpl
	}
}

// SetPileCount records the absolute pile count reported by a snapshot.
func (m *Model) SetPileCount(player, pile string, count int) {
	ts, ok := m.tallies[player]
	if !ok {
		ts = counters.NewTallies()
		m.tallies[player] = ts
	}
	ts.Set(pile, count)
}

// PileCount returns the last reported count of a player's pile.
func (m *Model) PileCount(player, pile string) int {
	if ts, ok := m.tallies[player]; ok {
		return ts.Get(pile)
	}
	return 0
}

// SetLocationPower records the reported power for one side at one location.
func (m *Model) SetLocationPower(player string, index, power int) {
	byIndex, ok := m.locationPower[player]
	if !ok {
		byIndex = make(map[int]int)
		m.locationPower[player] = byIndex
	}
	byIndex[index] = power
}

// PowerAt returns the reported power for a player at a location. The raw
// value is returned; negative values encode force-icon bookkeeping.
func (m *Model) PowerAt(player string, index int) int {
	if byIndex, ok := m.locationPower[player]; ok {
		return byIndex[index]
	}
	return 0
}

// TotalPower sums a player's power over all locations. Only positive values
// count: negative entries are force-icon bookkeeping, not combat power.
func (m *Model) TotalPower(player string) int {
	total := 0
	for _, power := range m.locationPower[player] {
		if power > 0 {
			total += power
		}
	}
	return total
}

// ForceAdvantage returns own activated force minus the opponent's.
func (m *Model) ForceAdvantage() int {
	return m.PileCount(m.ownName, counters.PileForcePile) -
		m.PileCount(m.opponentName, counters.PileForcePile)
}

// LifeForce returns the total remaining life force for a player.
func (m *Model) LifeForce(player string) int {
	return m.PileCount(player, counters.PileReserveDeck) +
		m.PileCount(player, counters.PileForcePile) +
		m.PileCount(player, counters.PileUsedPile)
}

// SetPhase records the current phase and label; returns the turn number
// parsed from the label, zero when it carries none.
func (m *Model) SetPhase(label string) int {
	m.phaseLabel = label
	phase, turn := ParsePhaseLabel(label)
	m.phase = phase
	return turn
}

// Phase returns the current parsed phase.
func (m *Model) Phase() Phase { return m.phase }

// PhaseLabel returns the raw phase label as reported by the server.
func (m *Model) PhaseLabel() string { return m.phaseLabel }

// SetTurn records the turn number and turn owner.
func (m *Model) SetTurn(number int, owner string) {
	m.turnNumber = number
	m.turnOwner = owner
}

// TurnNumber returns the current turn number.
func (m *Model) TurnNumber() int { return m.turnNumber }

// TurnOwner returns the participant whose turn it is.
func (m *Model) TurnOwner() string { return m.turnOwner }

// IsOwnTurn reports whether it is the owning player's turn.
func (m *Model) IsOwnTurn() bool {
	return m.turnOwner != "" && m.turnOwner == m.ownName
}

// StartBattle sets the battle flag and records the active battle location.
func (m *Model) StartBattle(locationIndex int) {
	m.battleInProgress = true
	m.battleLocation = locationIndex
}

// EndBattle clears the battle flag, location and any targeted-this-battle
// markers.
func (m *Model) EndBattle() {
	m.battleInProgress = false
	m.battleLocation = NoLocation
	m.targetedInBattle = make(map[string]bool)
	m.remainingAttrition = make(map[string]int)
	m.remainingDamage = make(map[string]int)
}

// BattleInProgress reports whether a battle is being resolved.
func (m *Model) BattleInProgress() bool { return m.battleInProgress }

// BattleLocation returns the active battle location index, NoLocation when
// no battle is in progress.
func (m *Model) BattleLocation() int { return m.battleLocation }

// MarkTargeted records that a card has already been targeted this battle.
func (m *Model) MarkTargeted(id string) { m.targetedInBattle[id] = true }

// WasTargeted reports whether a card was already targeted this battle.
func (m *Model) WasTargeted(id string) bool { return m.targetedInBattle[id] }

// SetRemainingAttrition records a side's remaining attrition from a snapshot.
func (m *Model) SetRemainingAttrition(player string, amount int) {
	m.remainingAttrition[player] = amount
}

// RemainingAttrition returns a side's remaining attrition.
func (m *Model) RemainingAttrition(player string) int {
	return m.remainingAttrition[player]
}

// SetRemainingDamage records a side's remaining battle damage from a snapshot.
func (m *Model) SetRemainingDamage(player string, amount int) {
	m.remainingDamage[player] = amount
}

// RemainingDamage returns a side's remaining battle damage.
func (m *Model) RemainingDamage(player string) int {
	return m.remainingDamage[player]
}

// RecordResult records the game result. A result derived from a winner-form
// message always wins; a loser-form result only fills an empty result. This
// makes the cross-check deterministic when both message forms arrive with
// conflicting names.
func (m *Model) RecordResult(winner, reason string, fromWinnerMessage bool) {
	if m.gameOver {
		if !fromWinnerMessage || m.resultFromWinnerMessage {
			return
		}
	}
	m.gameOver = true
	m.winner = winner
	m.endReason = reason
	m.resultFromWinnerMessage = fromWinnerMessage
}

// GameOver reports whether a terminal result has been recorded.
func (m *Model) GameOver() bool { return m.gameOver }

// Winner returns the recorded winner name.
func (m *Model) Winner() string { return m.winner }

// EndReason returns the recorded end reason.
func (m *Model) EndReason() string { return m.endReason }

// Won reports whether the owning player won, valid once GameOver is true.
func (m *Model) Won() bool { return m.gameOver && m.winner == m.ownName }

// ShouldConcede reports whether the owning player has no meaningful further
// action, with a reason. The decision of whether to actually concede belongs
// to the caller.
func (m *Model) ShouldConcede() (bool, string) {
	if m.gameOver {
		return false, ""
	}
	if len(m.tallies) == 0 {
		// No snapshot seen yet; too early to judge.
		return false, ""
	}
	if m.LifeForce(m.ownName) == 0 {
		return true, "no life force remaining"
	}
	if len(m.hand) == 0 && m.PileCount(m.ownName, counters.PileReserveDeck) == 0 && !m.hasPresence() {
		return true, "no cards in hand, reserve deck or on table"
	}
	return false, ""
}

// hasPresence reports whether the owning player has any card at a location.
func (m *Model) hasPresence() bool {
	for _, slot := range m.locations {
		if len(slot.OwnCards) > 0 {
			return true
		}
	}
	return false
}

// Summary returns a one-line description of the board for logging.
func (m *Model) Summary() string {
	return fmt.Sprintf("turn %d %s, %d cards, %d locations, %d in hand",
		m.turnNumber, m.phase, len(m.cards), len(m.locations), len(m.hand))
}

func (m *Model) logWarn(msg, cardID string, zone Zone) {
	if m.logger != nil {
		m.logger.Warn(msg,
			zap.String("card_id", cardID),
			zap.String("zone", zone.String()),
		)
	}
}
