package board

// LocationSlot is one position on the location line. A slot is always either
// a real location or an explicit empty placeholder; the location list never
// has holes and indices are contiguous from zero.
type LocationSlot struct {
	Index      int
	InstanceID string
	TemplateID string
	System     string
	Site       string
	Ground     bool
	Space      bool

	// Card instance ids at this location, split by which participant owns
	// them relative to the board's owning player.
	OwnCards      []string
	OpponentCards []string
}

// NewPlaceholder creates an empty placeholder slot for the given index.
func NewPlaceholder(index int) *LocationSlot {
	return &LocationSlot{
		Index:         index,
		OwnCards:      make([]string, 0),
		OpponentCards: make([]string, 0),
	}
}

// IsPlaceholder reports whether the slot holds no real location.
func (s *LocationSlot) IsPlaceholder() bool {
	return s.InstanceID == ""
}

// Name returns a human-readable name for logging.
func (s *LocationSlot) Name() string {
	if s.IsPlaceholder() {
		return "(empty)"
	}
	if s.Site != "" {
		return s.Site
	}
	return s.System
}

// clearLocation resets the slot to a placeholder, preserving its index and
// any cards recorded there. Location removal never shifts indices.
func (s *LocationSlot) clearLocation() {
	s.InstanceID = ""
	s.TemplateID = ""
	s.System = ""
	s.Site = ""
	s.Ground = false
	s.Space = false
}

func removeID(list []string, id string) []string {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
