package cards

// Side identifies which side of the Force a card belongs to.
type Side string

const (
	SideDark    Side = "Dark"
	SideLight   Side = "Light"
	SideNeutral Side = ""
)

// Opponent returns the opposing side. Neutral has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideDark:
		return SideLight
	case SideLight:
		return SideDark
	default:
		return SideNeutral
	}
}

// CardType is the broad rules category of a card template.
type CardType string

const (
	TypeCharacter CardType = "Character"
	TypeStarship  CardType = "Starship"
	TypeVehicle   CardType = "Vehicle"
	TypeLocation  CardType = "Location"
	TypeWeapon    CardType = "Weapon"
	TypeDevice    CardType = "Device"
	TypeEffect    CardType = "Effect"
	TypeInterrupt CardType = "Interrupt"
	TypeCreature  CardType = "Creature"
	TypeUnknown   CardType = ""
)

// Template holds the static attributes shared by every physical copy of a
// card. Attributes that do not apply to a type are left at their zero value;
// numeric attributes that are printed but unknown use -1.
type Template struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Side     Side     `json:"side"`
	Type     CardType `json:"type"`
	Subtype  string   `json:"subtype"`
	Power    int      `json:"power"`
	Ability  int      `json:"ability"`
	Deploy   int      `json:"deploy"`
	Forfeit  int      `json:"forfeit"`
	Destiny  int      `json:"destiny"`
	Icons    []string `json:"icons"`
	Site     string   `json:"site"`
	System   string   `json:"system"`
	Interior bool     `json:"interior"`
	Exterior bool     `json:"exterior"`
	Space    bool     `json:"space"`
}

// HasIcon reports whether the template carries the named icon.
func (t *Template) HasIcon(icon string) bool {
	for _, i := range t.Icons {
		if i == icon {
			return true
		}
	}
	return false
}

// IsLocation reports whether the template is a location card.
func (t *Template) IsLocation() bool {
	return t.Type == TypeLocation
}

// Lookup resolves a template id to its static attributes. Implementations
// must be safe for concurrent readers.
type Lookup interface {
	Template(id string) (*Template, bool)
}
