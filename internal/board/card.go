package board

import "github.com/swccgarena/rando/internal/cards"

// Zone represents the region of the table a card instance occupies.
type Zone int

const (
	ZoneAtLocation Zone = iota
	ZoneAttached
	ZoneHand
	ZoneReserveDeck
	ZoneForcePile
	ZoneUsedPile
	ZoneLostPile
	ZoneOutOfPlay
	ZoneSideOfTable
	ZoneUnknown
)

var zoneNames = map[Zone]string{
	ZoneAtLocation:  "AT_LOCATION",
	ZoneAttached:    "ATTACHED",
	ZoneHand:        "HAND",
	ZoneReserveDeck: "RESERVE_DECK",
	ZoneForcePile:   "FORCE_PILE",
	ZoneUsedPile:    "USED_PILE",
	ZoneLostPile:    "LOST_PILE",
	ZoneOutOfPlay:   "OUT_OF_PLAY",
	ZoneSideOfTable: "SIDE_OF_TABLE",
	ZoneUnknown:     "UNKNOWN",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseZone maps a wire zone name to a Zone. Unrecognized names map to
// ZoneUnknown rather than failing; the server occasionally reports
// bookkeeping zones the client has no use for.
func ParseZone(name string) Zone {
	for zone, zoneName := range zoneNames {
		if zoneName == name {
			return zone
		}
	}
	return ZoneUnknown
}

// NoLocation is the location index sentinel for cards not at any location.
const NoLocation = -1

// CardInstance is a single physical card occurrence in the game. Attachment
// and location membership are stored as id references resolved through the
// owning Model's card map, never as direct pointers.
type CardInstance struct {
	ID            string
	TemplateID    string
	Zone          Zone
	Owner         string
	LocationIndex int
	AttachedTo    string
	Attached      map[string]bool
	Flipped       bool
	Template      *cards.Template
}

// NewCardInstance creates a card instance not yet placed anywhere.
func NewCardInstance(id, templateID, owner string) *CardInstance {
	return &CardInstance{
		ID:            id,
		TemplateID:    templateID,
		Zone:          ZoneUnknown,
		Owner:         owner,
		LocationIndex: NoLocation,
		Attached:      make(map[string]bool),
	}
}

// Title returns the card title when the template is known, otherwise the
// template id.
func (c *CardInstance) Title() string {
	if c.Template != nil && c.Template.Title != "" {
		return c.Template.Title
	}
	return c.TemplateID
}

// Type returns the card type when the template is known.
func (c *CardInstance) Type() cards.CardType {
	if c.Template != nil {
		return c.Template.Type
	}
	return cards.TypeUnknown
}
