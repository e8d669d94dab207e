package gemp

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// Wire event type codes sent by the server.
const (
	EventParticipants     = "P"
	EventTurnChange       = "TC"
	EventPhaseChange      = "GPC"
	EventPutCardInPlay    = "PCIP"
	EventPutCardAndReplace = "PCIPAR"
	EventPutCardMirrored  = "PCIPM"
	EventRemoveCardFromPlay = "RCFP"
	EventRemoveCardInPlay = "RCIP"
	EventMoveCardInPlay   = "MCIP"
	EventGameStats        = "GS"
	EventStartBattle      = "SB"
	EventStartBattleReplay = "SBAR"
	EventEndBattle        = "EB"
	EventEndBattleReplay  = "EBAR"
	EventMessage          = "M"
	EventDecision         = "D"
	EventGameEnded        = "EG"
)

// Param is one name/value parameter of a decision event. Parameters repeat
// and their order is significant: candidate lists are built positionally.
type Param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// PlayerCounts carries one player's pile counts from a game-stats event.
// Counts are absolute remaining amounts, not deltas.
type PlayerCounts struct {
	ParticipantID string `xml:"participantId,attr"`
	ReserveDeck   int    `xml:"reserveDeck,attr"`
	ForcePile     int    `xml:"forcePile,attr"`
	UsedPile      int    `xml:"usedPile,attr"`
	LostPile      int    `xml:"lostPile,attr"`
	OutOfPlay     int    `xml:"outOfPlay,attr"`
	HandSize      int    `xml:"handSize,attr"`
	Attrition     int    `xml:"attrition,attr"`
	BattleDamage  int    `xml:"battleDamage,attr"`
}

// LocationPower carries one side's power at one location from a game-stats
// event.
type LocationPower struct {
	ParticipantID string `xml:"participantId,attr"`
	Index         int    `xml:"index,attr"`
	Power         int    `xml:"power,attr"`
}

// RawEvent is one kind-tagged game event as it appears on the wire. Only
// the attributes relevant to the event's type are populated; everything
// else is left at its zero value.
type RawEvent struct {
	Type string `xml:"type,attr"`

	// Participants.
	AllParticipants string `xml:"allParticipantIds,attr"`
	ParticipantID   string `xml:"participantId,attr"`
	Side            string `xml:"side,attr"`

	// Card placement, removal, move.
	CardID        string `xml:"cardId,attr"`
	OtherCardIDs  string `xml:"otherCardIds,attr"`
	BlueprintID   string `xml:"blueprintId,attr"`
	Zone          string `xml:"zone,attr"`
	LocationIndex string `xml:"locationIndex,attr"`
	TargetCardID  string `xml:"targetCardId,attr"`
	Flipped       string `xml:"flipped,attr"`

	// Location declaration attributes on placement events.
	System string `xml:"systemName,attr"`
	Site   string `xml:"siteName,attr"`

	// Phase and turn.
	Phase string `xml:"phase,attr"`

	// Free-text message.
	Message string `xml:"message,attr"`

	// Decision.
	ID           string  `xml:"id,attr"`
	DecisionType string  `xml:"decisionType,attr"`
	Text         string  `xml:"text,attr"`
	Params       []Param `xml:"parameter"`

	// Game stats children.
	PlayerCounts   []PlayerCounts  `xml:"playerCounts"`
	LocationPowers []LocationPower `xml:"locationPower"`
}

// LocationIndexInt returns the location index attribute as an int, -1 when
// absent or malformed.
func (e *RawEvent) LocationIndexInt() int {
	if e.LocationIndex == "" {
		return -1
	}
	n, err := strconv.Atoi(e.LocationIndex)
	if err != nil {
		return -1
	}
	return n
}

// FlippedBool returns the flipped attribute as a bool.
func (e *RawEvent) FlippedBool() bool {
	return e.Flipped == "true"
}

// GameUpdate is the payload of a game-state or update response: a channel
// number for the next poll plus the ordered event batch.
type GameUpdate struct {
	Channel int        `xml:"cn,attr"`
	Events  []RawEvent `xml:"ge"`
}

// parseUpdate decodes a game-state or update document. Both share the same
// shape apart from the root element name, which the decoder ignores.
func parseUpdate(data []byte) (*GameUpdate, error) {
	var update GameUpdate
	if err := xml.Unmarshal(data, &update); err != nil {
		return nil, fmt.Errorf("failed to decode game update: %w", err)
	}
	return &update, nil
}
