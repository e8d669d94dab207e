package chat

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPoster struct {
	gameID   string
	messages []string
	err      error
}

func (p *capturingPoster) SendChat(ctx context.Context, gameID, message string) error {
	p.gameID = gameID
	p.messages = append(p.messages, message)
	return p.err
}

func TestNarratorPostsMilestoneLines(t *testing.T) {
	poster := &capturingPoster{}
	n := NewNarrator(poster, "42", rand.New(rand.NewSource(1)), nil)

	n.BattleStarted(2)
	n.GameEnded(true)
	n.GameEnded(false)
	n.Conceding("no life force remaining")

	require.Len(t, poster.messages, 4)
	assert.Equal(t, "42", poster.gameID)
	assert.Contains(t, battleLines, poster.messages[0])
	assert.Contains(t, winLines, poster.messages[1])
	assert.Contains(t, lossLines, poster.messages[2])
	assert.Contains(t, concedeLines, poster.messages[3])
}

func TestNarratorSwallowsSendErrors(t *testing.T) {
	poster := &capturingPoster{err: errors.New("connection refused")}
	n := NewNarrator(poster, "42", rand.New(rand.NewSource(1)), nil)

	assert.NotPanics(t, func() { n.GameEnded(true) })
}
