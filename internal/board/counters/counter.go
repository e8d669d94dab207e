package counters

// Pile names reported by game-state snapshots.
const (
	PileReserveDeck = "RESERVE_DECK"
	PileForcePile   = "FORCE_PILE"
	PileUsedPile    = "USED_PILE"
	PileLostPile    = "LOST_PILE"
	PileOutOfPlay   = "OUT_OF_PLAY"
	PileHand        = "HAND"
)

// Tally represents one named pile count for a player.
type Tally struct {
	Name  string
	Count int
}

// NewTally creates a new tally with the given name and count.
// Negative counts are clamped to zero.
func NewTally(name string, count int) *Tally {
	if count < 0 {
		count = 0
	}
	return &Tally{
		Name:  name,
		Count: count,
	}
}

// Copy creates a deep copy of the tally.
func (t *Tally) Copy() *Tally {
	return &Tally{
		Name:  t.Name,
		Count: t.Count,
	}
}

// Tallies manages the collection of pile counts for one player.
type Tallies struct {
	Tallies map[string]*Tally
}

// NewTallies creates a new Tallies collection.
func NewTallies() *Tallies {
	return &Tallies{
		Tallies: make(map[string]*Tally),
	}
}

// Set replaces the count for the named pile. Snapshots report absolute
// remaining amounts, not deltas, so Set overwrites rather than accumulates.
func (ts *Tallies) Set(name string, count int) {
	if count < 0 {
		count = 0
	}
	if existing, ok := ts.Tallies[name]; ok {
		existing.Count = count
	} else {
		ts.Tallies[name] = NewTally(name, count)
	}
}

// Get returns the count of the named pile, zero when unreported.
func (ts *Tallies) Get(name string) int {
	if tally, ok := ts.Tallies[name]; ok {
		return tally.Count
	}
	return 0
}

// Total returns the sum of all pile counts.
func (ts *Tallies) Total() int {
	total := 0
	for _, tally := range ts.Tallies {
		total += tally.Count
	}
	return total
}

// Copy creates a deep copy of the collection.
func (ts *Tallies) Copy() *Tallies {
	result := NewTallies()
	for name, tally := range ts.Tallies {
		result.Tallies[name] = tally.Copy()
	}
	return result
}
