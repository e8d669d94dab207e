// Package session drives one game from login to result. A session owns its
// own board model, applier, resolver and loop tracker; nothing is shared
// between concurrent sessions.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/board/events"
	"github.com/swccgarena/rando/internal/decision"
	"github.com/swccgarena/rando/internal/gemp"
	"go.uber.org/zap"
)

// GameClient is the server surface a session needs. *gemp.Client satisfies
// it; tests substitute a scripted fake.
type GameClient interface {
	GameState(ctx context.Context, gameID string) (*gemp.GameUpdate, error)
	Poll(ctx context.Context, gameID string, channel int) (*gemp.GameUpdate, error)
	Respond(ctx context.Context, gameID string, channel int, decisionID, value string) (*gemp.GameUpdate, error)
	Concede(ctx context.Context, gameID string) error
	Pace(ctx context.Context, deliberate bool)
}

// Config holds per-session settings.
type Config struct {
	GameID string

	// MaxIterations caps decision cycles within one poll batch expansion.
	// Zero selects the default.
	MaxIterations int

	// OnConcede, if set, runs once before a concede request is sent.
	OnConcede func(reason string)
}

const defaultMaxIterations = 400

// Session is the sequential driver for one game.
type Session struct {
	id       uuid.UUID
	logger   *zap.Logger
	client   GameClient
	gameID   string
	maxIters int

	model    *board.Model
	applier  *events.Applier
	resolver *decision.Resolver

	channel   int
	onConcede func(string)
	conceded  bool
}

// New creates a session. hooks are the caller's observers; the session
// additionally routes phase changes into the resolver's loop tracker.
func New(cfg Config, client GameClient, model *board.Model, resolver *decision.Resolver, hooks events.Hooks, logger *zap.Logger) *Session {
	s := &Session{
		id:        uuid.New(),
		logger:    logger,
		client:    client,
		gameID:    cfg.GameID,
		maxIters:  cfg.MaxIterations,
		model:     model,
		resolver:  resolver,
		onConcede: cfg.OnConcede,
	}
	if s.maxIters <= 0 {
		s.maxIters = defaultMaxIterations
	}

	callerPhase := hooks.PhaseChanged
	hooks.PhaseChanged = func(phase board.Phase) {
		resolver.PhaseChanged()
		if callerPhase != nil {
			callerPhase(phase)
		}
	}
	s.applier = events.NewApplier(model, hooks, logger)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Conceded reports whether this session sent a concede request.
func (s *Session) Conceded() bool { return s.conceded }

// Run plays the game to completion. It returns when the game ends, the
// session concedes, the context is cancelled, or the server becomes
// unreachable. A protocol error triggers a best-effort concede before the
// error is returned.
func (s *Session) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("Session starting",
			zap.String("sessionId", s.id.String()),
			zap.String("gameId", s.gameID))
	}

	update, err := s.client.GameState(ctx, s.gameID)
	if err != nil {
		return fmt.Errorf("fetching initial game state: %w", err)
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.processBatch(ctx, update); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.concede(ctx, "unrecoverable protocol error")
			return err
		}
		if s.model.GameOver() || s.conceded {
			s.finish()
			return nil
		}

		update, err = s.client.Poll(ctx, s.gameID, s.channel)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.concede(ctx, "poll failure")
			return fmt.Errorf("polling game %s: %w", s.gameID, err)
		}
	}
}

// processBatch applies one server update and expands it: answering a
// decision yields a follow-up update, which is processed in the same batch
// under the shared iteration cap.
func (s *Session) processBatch(ctx context.Context, update *gemp.GameUpdate) error {
	iterations := 0

	for update != nil {
		if update.Channel > 0 {
			s.channel = update.Channel
		}

		var pending *gemp.RawEvent
		for i := range update.Events {
			ev := &update.Events[i]
			if ev.Type == gemp.EventDecision {
				// The server keeps at most one decision pending; a second
				// one in the same update supersedes the first.
				if pending != nil && s.logger != nil {
					s.logger.Warn("multiple decisions in one update, answering the last",
						zap.String("superseded", pending.ID),
						zap.String("kept", ev.ID))
				}
				pending = ev
				continue
			}
			s.applier.Apply(ev)
		}

		if s.model.GameOver() {
			return nil
		}
		if ok, reason := s.model.ShouldConcede(); ok {
			s.concede(ctx, reason)
			return nil
		}
		if pending == nil {
			return nil
		}

		iterations++
		if iterations > s.maxIters {
			s.concede(ctx, "decision iteration cap reached")
			return nil
		}

		req := decision.ParseRequest(pending)
		result := s.resolver.Resolve(req)
		if result.ConsiderConcede {
			s.concede(ctx, "sustained decision loop")
			return nil
		}

		s.client.Pace(ctx, result.Timing == decision.TimingDeliberate)

		next, err := s.client.Respond(ctx, s.gameID, s.channel, req.ID, result.Value)
		if err != nil {
			return fmt.Errorf("responding to decision %s: %w", req.ID, err)
		}
		if s.logger != nil {
			s.logger.Debug("Decision answered",
				zap.String("decisionId", req.ID),
				zap.String("kind", req.Kind.String()),
				zap.String("value", result.Value),
				zap.String("source", result.Source))
		}
		update = next
	}
	return nil
}

// concede sends a best-effort concede request. Failures are logged and
// swallowed: by this point the session is ending either way.
func (s *Session) concede(ctx context.Context, reason string) {
	if s.conceded {
		return
	}
	s.conceded = true
	if s.logger != nil {
		s.logger.Warn("Conceding game",
			zap.String("gameId", s.gameID),
			zap.String("reason", reason))
	}
	if s.onConcede != nil {
		s.onConcede(reason)
	}
	if err := s.client.Concede(ctx, s.gameID); err != nil && s.logger != nil {
		s.logger.Warn("Concede request failed", zap.Error(err))
	}
}

func (s *Session) finish() {
	if s.logger == nil {
		return
	}
	s.logger.Info("Session finished",
		zap.String("sessionId", s.id.String()),
		zap.Bool("won", s.model.Won()),
		zap.String("winner", s.model.Winner()),
		zap.String("reason", s.model.EndReason()),
		zap.Bool("conceded", s.conceded))
}
