package admin

import (
	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/board/counters"
)

// LocationView is one location line slot as shown to observers.
type LocationView struct {
	Index         int      `json:"index"`
	Name          string   `json:"name"`
	Placeholder   bool     `json:"placeholder"`
	OwnCards      []string `json:"own_cards,omitempty"`
	OpponentCards []string `json:"opponent_cards,omitempty"`
}

// PileView is one player's pile counts.
type PileView struct {
	ReserveDeck int `json:"reserve_deck"`
	ForcePile   int `json:"force_pile"`
	UsedPile    int `json:"used_pile"`
	LostPile    int `json:"lost_pile"`
}

// Snapshot is the observer view of the board at one instant.
type Snapshot struct {
	GameID    string `json:"game_id"`
	Player    string `json:"player"`
	Opponent  string `json:"opponent"`
	Side      string `json:"side"`
	Turn      int    `json:"turn"`
	TurnOwner string `json:"turn_owner"`
	Phase     string `json:"phase"`

	HandSize  int            `json:"hand_size"`
	Locations []LocationView `json:"locations"`
	Piles     PileView       `json:"piles"`
	Battle    bool           `json:"battle"`

	GameOver bool   `json:"game_over"`
	Winner   string `json:"winner,omitempty"`
}

// BuildSnapshot captures the current board state. It must run on the session
// goroutine: the model is not safe for concurrent mutation.
func BuildSnapshot(gameID string, m *board.Model) *Snapshot {
	snap := &Snapshot{
		GameID:    gameID,
		Player:    m.OwnName(),
		Opponent:  m.OpponentName(),
		Side:      string(m.OwnSide()),
		Turn:      m.TurnNumber(),
		TurnOwner: m.TurnOwner(),
		Phase:     m.Phase().String(),
		HandSize:  len(m.Hand()),
		Battle:    m.BattleInProgress(),
		GameOver:  m.GameOver(),
		Winner:    m.Winner(),
		Piles: PileView{
			ReserveDeck: m.PileCount(m.OwnName(), counters.PileReserveDeck),
			ForcePile:   m.PileCount(m.OwnName(), counters.PileForcePile),
			UsedPile:    m.PileCount(m.OwnName(), counters.PileUsedPile),
			LostPile:    m.PileCount(m.OwnName(), counters.PileLostPile),
		},
	}

	for i := 0; i < m.LocationCount(); i++ {
		slot, ok := m.Location(i)
		if !ok {
			continue
		}
		snap.Locations = append(snap.Locations, LocationView{
			Index:         slot.Index,
			Name:          slot.Name(),
			Placeholder:   slot.IsPlaceholder(),
			OwnCards:      append([]string(nil), slot.OwnCards...),
			OpponentCards: append([]string(nil), slot.OpponentCards...),
		})
	}
	return snap
}
