// Package stats persists game outcomes and card play counts to PostgreSQL.
// Persistence is optional: the agent plays fine without a database.
package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	id          BIGSERIAL PRIMARY KEY,
	game_id     TEXT NOT NULL,
	player      TEXT NOT NULL,
	winner      TEXT NOT NULL,
	end_reason  TEXT NOT NULL,
	won         BOOLEAN NOT NULL,
	conceded    BOOLEAN NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS card_plays (
	template_id TEXT PRIMARY KEY,
	plays       BIGINT NOT NULL DEFAULT 0
);
`

// GameResult is one finished game from the agent's point of view.
type GameResult struct {
	GameID    string
	Player    string
	Winner    string
	EndReason string
	Won       bool
	Conceded  bool
}

// Repository records results and play counts. Play counts are buffered in
// memory during a game and written in one batch by Flush.
type Repository struct {
	logger *zap.Logger
	pool   *pgxpool.Pool

	mu    sync.Mutex
	plays map[string]int
}

// Open connects to the database and ensures the schema exists.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to stats database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging stats database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring stats schema: %w", err)
	}

	if logger != nil {
		logger.Info("Stats database connected")
	}
	return &Repository{logger: logger, pool: pool, plays: make(map[string]int)}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// CountPlay buffers one play of a card template.
func (r *Repository) CountPlay(templateID string) {
	if templateID == "" {
		return
	}
	r.mu.Lock()
	r.plays[templateID]++
	r.mu.Unlock()
}

// PendingPlays returns a copy of the unflushed play counts.
func (r *Repository) PendingPlays() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.plays))
	for k, v := range r.plays {
		out[k] = v
	}
	return out
}

// Flush writes the buffered play counts and clears the buffer.
func (r *Repository) Flush(ctx context.Context) error {
	r.mu.Lock()
	plays := r.plays
	r.plays = make(map[string]int)
	r.mu.Unlock()

	for templateID, count := range plays {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO card_plays (template_id, plays) VALUES ($1, $2)
			 ON CONFLICT (template_id) DO UPDATE SET plays = card_plays.plays + EXCLUDED.plays`,
			templateID, count)
		if err != nil {
			return fmt.Errorf("recording plays for %s: %w", templateID, err)
		}
	}
	return nil
}

// RecordResult writes one finished game.
func (r *Repository) RecordResult(ctx context.Context, result GameResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO game_results (game_id, player, winner, end_reason, won, conceded)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		result.GameID, result.Player, result.Winner, result.EndReason, result.Won, result.Conceded)
	if err != nil {
		return fmt.Errorf("recording game result: %w", err)
	}
	if r.logger != nil {
		r.logger.Info("Game result recorded",
			zap.String("gameId", result.GameID),
			zap.Bool("won", result.Won))
	}
	return nil
}

// WinRate returns a player's wins and total recorded games.
func (r *Repository) WinRate(ctx context.Context, player string) (wins, total int, err error) {
	row := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE won), COUNT(*) FROM game_results WHERE player = $1`,
		player)
	if err := row.Scan(&wins, &total); err != nil {
		return 0, 0, fmt.Errorf("querying win rate: %w", err)
	}
	return wins, total, nil
}
