package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/board/counters"
	"github.com/swccgarena/rando/internal/cards"
	"github.com/swccgarena/rando/internal/gemp"
)

func testLibrary() *cards.Library {
	lib := cards.NewLibrary(nil)
	lib.Add(&cards.Template{ID: "1_1", Title: "Darth Vader", Side: cards.SideDark, Type: cards.TypeCharacter, Power: 6})
	lib.Add(&cards.Template{ID: "2_2", Title: "Luke", Side: cards.SideLight, Type: cards.TypeCharacter, Power: 4})
	lib.Add(&cards.Template{ID: "1_289", Title: "Tatooine", Side: cards.SideDark, Type: cards.TypeLocation, System: "Tatooine", Space: true})
	return lib
}

func newTestApplier(hooks Hooks) (*Applier, *board.Model) {
	model := board.NewModel("vader_fan", testLibrary(), nil)
	model.SetOpponentName("rebel_scum")
	return NewApplier(model, hooks, nil), model
}

func handPlacement(cardID, blueprintID, owner string) *gemp.RawEvent {
	return &gemp.RawEvent{
		Type:          gemp.EventPutCardInPlay,
		CardID:        cardID,
		BlueprintID:   blueprintID,
		Zone:          "HAND",
		ParticipantID: owner,
	}
}

func TestSideDetectionFromHandIsIdempotent(t *testing.T) {
	detections := 0
	var detected cards.Side
	applier, model := newTestApplier(Hooks{
		SideDetected: func(own, opponent cards.Side) {
			detections++
			detected = own
		},
	})

	event := handPlacement("c1", "1_1", "vader_fan")
	applier.Apply(event)
	applier.Apply(event)
	applier.Apply(handPlacement("c2", "1_1", "vader_fan"))

	assert.Equal(t, 1, detections, "detection fires once and is idempotent thereafter")
	assert.Equal(t, cards.SideDark, detected)
	assert.Equal(t, cards.SideDark, model.OwnSide())
}

func TestSideNotDetectedFromOtherZones(t *testing.T) {
	applier, model := newTestApplier(Hooks{})

	applier.Apply(&gemp.RawEvent{
		Type:          gemp.EventPutCardInPlay,
		CardID:        "c1",
		BlueprintID:   "1_1",
		Zone:          "AT_LOCATION",
		ParticipantID: "vader_fan",
		LocationIndex: "0",
	})

	assert.Equal(t, cards.SideNeutral, model.OwnSide(),
		"non-hand zones can hold side-altered cards and must not drive detection")
}

func TestSideNotDetectedFromOpponentHand(t *testing.T) {
	applier, model := newTestApplier(Hooks{})
	applier.Apply(handPlacement("c1", "2_2", "rebel_scum"))
	assert.Equal(t, cards.SideNeutral, model.OwnSide())
}

func TestPhaseChangeParsesTurnAndFiresHooks(t *testing.T) {
	var turns []int
	var phases []board.Phase
	applier, model := newTestApplier(Hooks{
		TurnChanged:  func(turn int) { turns = append(turns, turn) },
		PhaseChanged: func(p board.Phase) { phases = append(phases, p) },
	})

	applier.Apply(&gemp.RawEvent{Type: gemp.EventPhaseChange, Phase: "Deploy (4)"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventPhaseChange, Phase: "Battle (4)"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventPhaseChange, Phase: "Activate (5)"})

	assert.Equal(t, []int{4, 5}, turns, "turn hook fires only on turn number changes")
	assert.Equal(t, []board.Phase{board.PhaseDeploy, board.PhaseBattle, board.PhaseActivate}, phases)
	assert.Equal(t, 5, model.TurnNumber())
}

func TestTurnChangeSetsOwner(t *testing.T) {
	applier, model := newTestApplier(Hooks{})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventTurnChange, ParticipantID: "vader_fan"})
	assert.True(t, model.IsOwnTurn())
}

func TestLocationPlacementBuildsSlot(t *testing.T) {
	applier, model := newTestApplier(Hooks{})

	applier.Apply(&gemp.RawEvent{
		Type:          gemp.EventPutCardInPlay,
		CardID:        "loc1",
		BlueprintID:   "1_289",
		Zone:          "AT_LOCATION",
		ParticipantID: "vader_fan",
		LocationIndex: "0",
	})

	slot, ok := model.Location(0)
	require.True(t, ok)
	assert.Equal(t, "loc1", slot.InstanceID)
	assert.Equal(t, "Tatooine", slot.System)
	assert.True(t, slot.Space)
}

func TestRemovalAcceptsCommaJoinedIDs(t *testing.T) {
	applier, model := newTestApplier(Hooks{})
	applier.Apply(handPlacement("c1", "1_1", "vader_fan"))
	applier.Apply(handPlacement("c2", "1_1", "vader_fan"))

	applier.Apply(&gemp.RawEvent{Type: gemp.EventRemoveCardFromPlay, CardID: "c1", OtherCardIDs: "c2"})

	_, ok := model.Card("c1")
	assert.False(t, ok)
	_, ok = model.Card("c2")
	assert.False(t, ok)
}

func TestGameStatsPopulateCounters(t *testing.T) {
	applier, model := newTestApplier(Hooks{})

	applier.Apply(&gemp.RawEvent{
		Type: gemp.EventGameStats,
		PlayerCounts: []gemp.PlayerCounts{
			{ParticipantID: "vader_fan", ReserveDeck: 30, ForcePile: 8, UsedPile: 2, LostPile: 4, HandSize: 7},
		},
		LocationPowers: []gemp.LocationPower{
			{ParticipantID: "vader_fan", Index: 2, Power: 7},
			{ParticipantID: "rebel_scum", Index: 2, Power: -1},
		},
	})

	assert.Equal(t, 30, model.PileCount("vader_fan", counters.PileReserveDeck))
	assert.Equal(t, 8, model.PileCount("vader_fan", counters.PileForcePile))
	assert.Equal(t, 7, model.PowerAt("vader_fan", 2))
	assert.Equal(t, 0, model.TotalPower("rebel_scum"))
}

func TestBattleDamageHighWaterMark(t *testing.T) {
	var amounts []int
	applier, model := newTestApplier(Hooks{
		BattleDamage: func(amount int) { amounts = append(amounts, amount) },
	})

	applier.Apply(&gemp.RawEvent{Type: gemp.EventStartBattle, LocationIndex: "1"})
	require.True(t, model.BattleInProgress())

	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "rebel_scum must satisfy 12 battle damage"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "rebel_scum must satisfy 18 battle damage"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "rebel_scum must satisfy 15 battle damage"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventEndBattle})

	assert.Equal(t, []int{18}, amounts,
		"exactly one callback fires, with the highest value seen before battle end")
	assert.False(t, model.BattleInProgress())
}

func TestNoDamageCallbackWithoutDamage(t *testing.T) {
	fired := false
	applier, _ := newTestApplier(Hooks{
		BattleDamage: func(int) { fired = true },
	})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventStartBattle, LocationIndex: "0"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventEndBattle})
	assert.False(t, fired)
}

func TestWinnerMessageRecordsResult(t *testing.T) {
	applier, model := newTestApplier(Hooks{})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "vader_fan is the winner due to: Force depletion"})

	assert.True(t, model.GameOver())
	assert.Equal(t, "vader_fan", model.Winner())
	assert.Equal(t, "Force depletion", model.EndReason())
	assert.True(t, model.Won())
}

func TestLoserMessageImpliesWinner(t *testing.T) {
	applier, model := newTestApplier(Hooks{})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "vader_fan lost due to: conceding"})

	assert.True(t, model.GameOver())
	assert.Equal(t, "rebel_scum", model.Winner())
	assert.False(t, model.Won())
}

func TestConflictingResultMessagesPreferWinnerForm(t *testing.T) {
	ended := 0
	applier, model := newTestApplier(Hooks{
		GameEnded: func(string, string) { ended++ },
	})

	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "vader_fan lost due to: Force depletion"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "vader_fan is the winner due to: opponent conceded"})

	assert.Equal(t, "vader_fan", model.Winner(), "the winner-form message takes precedence")
	assert.Equal(t, 1, ended, "the end hook fires once")
}

func TestGameEndedEventRecordsResult(t *testing.T) {
	ended := 0
	applier, model := newTestApplier(Hooks{
		GameEnded: func(string, string) { ended++ },
	})

	applier.Apply(&gemp.RawEvent{Type: gemp.EventGameEnded})

	assert.True(t, model.GameOver(), "the session must be able to stop without a result message")
	assert.Equal(t, "", model.Winner())
	assert.False(t, model.Won())
	assert.Equal(t, 1, ended)
}

func TestGameEndedKeepsMessageResult(t *testing.T) {
	ended := 0
	applier, model := newTestApplier(Hooks{
		GameEnded: func(string, string) { ended++ },
	})

	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "vader_fan is the winner due to: Force depletion"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventGameEnded})

	assert.Equal(t, "vader_fan", model.Winner())
	assert.Equal(t, "Force depletion", model.EndReason())
	assert.Equal(t, 1, ended)
}

func TestWinnerMessageRefinesGameEndedResult(t *testing.T) {
	applier, model := newTestApplier(Hooks{})

	applier.Apply(&gemp.RawEvent{Type: gemp.EventGameEnded})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "vader_fan is the winner due to: opponent conceded"})

	assert.Equal(t, "vader_fan", model.Winner())
	assert.True(t, model.Won())
}

func TestBattleDamageRequiresWordBoundary(t *testing.T) {
	var amounts []int
	applier, _ := newTestApplier(Hooks{
		BattleDamage: func(amount int) { amounts = append(amounts, amount) },
	})

	applier.Apply(&gemp.RawEvent{Type: gemp.EventStartBattle, LocationIndex: "0"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventMessage, Message: "rebel_scum controls 5 battlegrounds"})
	applier.Apply(&gemp.RawEvent{Type: gemp.EventEndBattle})

	assert.Empty(t, amounts)
}

func TestCardPlacedHookFiresOncePerInstance(t *testing.T) {
	placed := 0
	applier, _ := newTestApplier(Hooks{
		CardPlaced: func(string, board.Zone, string) { placed++ },
	})

	applier.Apply(handPlacement("c1", "1_1", "vader_fan"))
	applier.Apply(handPlacement("c1", "1_1", "vader_fan"))
	applier.Apply(&gemp.RawEvent{
		Type:          gemp.EventPutCardInPlay,
		CardID:        "c1",
		BlueprintID:   "1_1",
		Zone:          "AT_LOCATION",
		ParticipantID: "vader_fan",
		LocationIndex: "0",
	})
	applier.Apply(handPlacement("c2", "1_1", "vader_fan"))

	assert.Equal(t, 2, placed, "re-placements of a known instance do not count again")
}

func TestUnknownEventTypeIsSkipped(t *testing.T) {
	applier, model := newTestApplier(Hooks{})
	before := model.CardCount()
	applier.Apply(&gemp.RawEvent{Type: "ZZZ", CardID: "c1"})
	assert.Equal(t, before, model.CardCount())
}

func TestKindOfCollapsesVariants(t *testing.T) {
	assert.Equal(t, KindCardPlaced, KindOf(gemp.EventPutCardInPlay))
	assert.Equal(t, KindCardPlaced, KindOf(gemp.EventPutCardAndReplace))
	assert.Equal(t, KindCardPlaced, KindOf(gemp.EventPutCardMirrored))
	assert.Equal(t, KindCardRemoved, KindOf(gemp.EventRemoveCardInPlay))
	assert.Equal(t, KindBattleStart, KindOf(gemp.EventStartBattleReplay))
	assert.Equal(t, KindUnknown, KindOf("???"))
}
