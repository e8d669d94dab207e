package events

import "github.com/swccgarena/rando/internal/gemp"

// Kind is the closed set of event categories the applier dispatches on.
type Kind int

const (
	KindUnknown Kind = iota
	KindParticipants
	KindTurnChange
	KindPhaseChange
	KindCardPlaced
	KindCardRemoved
	KindCardMoved
	KindGameStats
	KindBattleStart
	KindBattleEnd
	KindMessage
	KindDecision
	KindGameEnded
)

var kindNames = map[Kind]string{
	KindUnknown:      "UNKNOWN",
	KindParticipants: "PARTICIPANTS",
	KindTurnChange:   "TURN_CHANGE",
	KindPhaseChange:  "PHASE_CHANGE",
	KindCardPlaced:   "CARD_PLACED",
	KindCardRemoved:  "CARD_REMOVED",
	KindCardMoved:    "CARD_MOVED",
	KindGameStats:    "GAME_STATS",
	KindBattleStart:  "BATTLE_START",
	KindBattleEnd:    "BATTLE_END",
	KindMessage:      "MESSAGE",
	KindDecision:     "DECISION",
	KindGameEnded:    "GAME_ENDED",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// KindOf maps a wire event type code to its Kind. Placement, removal and
// battle lifecycle variants collapse onto a single kind each: the variants
// carry identical semantics for state reconstruction. Unrecognized codes map
// explicitly to KindUnknown.
func KindOf(code string) Kind {
	switch code {
	case gemp.EventParticipants:
		return KindParticipants
	case gemp.EventTurnChange:
		return KindTurnChange
	case gemp.EventPhaseChange:
		return KindPhaseChange
	case gemp.EventPutCardInPlay, gemp.EventPutCardAndReplace, gemp.EventPutCardMirrored:
		return KindCardPlaced
	case gemp.EventRemoveCardFromPlay, gemp.EventRemoveCardInPlay:
		return KindCardRemoved
	case gemp.EventMoveCardInPlay:
		return KindCardMoved
	case gemp.EventGameStats:
		return KindGameStats
	case gemp.EventStartBattle, gemp.EventStartBattleReplay:
		return KindBattleStart
	case gemp.EventEndBattle, gemp.EventEndBattleReplay:
		return KindBattleEnd
	case gemp.EventMessage:
		return KindMessage
	case gemp.EventDecision:
		return KindDecision
	case gemp.EventGameEnded:
		return KindGameEnded
	default:
		return KindUnknown
	}
}
