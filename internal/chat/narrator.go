// Package chat posts canned table-talk lines at game milestones. Lines are
// flavor only; failures are logged and never affect play.
package chat

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Poster is the outbound chat surface. *gemp.Client satisfies it.
type Poster interface {
	SendChat(ctx context.Context, gameID, message string) error
}

var (
	battleLines = []string{
		"Time for battle!",
		"You may fire when ready.",
		"I have you now.",
	}
	winLines = []string{
		"gg",
		"Good game, thanks!",
		"The Force was with me today. gg!",
	}
	lossLines = []string{
		"gg, well played",
		"Impressive. Most impressive.",
	}
	concedeLines = []string{
		"I concede, well played. gg",
		"Nothing left here. gg",
	}
)

const sendTimeout = 5 * time.Second

// Narrator posts one line per milestone.
type Narrator struct {
	logger *zap.Logger
	poster Poster
	gameID string
	rng    *rand.Rand
}

// NewNarrator creates a narrator for one game. A nil rng gets a time seed.
func NewNarrator(poster Poster, gameID string, rng *rand.Rand, logger *zap.Logger) *Narrator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Narrator{logger: logger, poster: poster, gameID: gameID, rng: rng}
}

// BattleStarted posts a battle opener.
func (n *Narrator) BattleStarted(locationIndex int) {
	n.post(pick(n.rng, battleLines))
}

// GameEnded posts the appropriate endgame line.
func (n *Narrator) GameEnded(won bool) {
	if won {
		n.post(pick(n.rng, winLines))
		return
	}
	n.post(pick(n.rng, lossLines))
}

// Conceding posts a concede line.
func (n *Narrator) Conceding(reason string) {
	n.post(pick(n.rng, concedeLines))
}

func (n *Narrator) post(message string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := n.poster.SendChat(ctx, n.gameID, message); err != nil && n.logger != nil {
		n.logger.Warn("Chat message failed", zap.Error(err))
	}
}

func pick(rng *rand.Rand, lines []string) string {
	return lines[rng.Intn(len(lines))]
}
