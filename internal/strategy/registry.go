// Package strategy provides pluggable scoring strategies for decision
// resolution. Strategies are advisory: they rank candidate responses, and
// the resolver falls back to heuristics whenever no strategy applies.
package strategy

import (
	"sync"

	"github.com/swccgarena/rando/internal/decision"
	"go.uber.org/zap"
)

// Registry holds the active scorers in registration order. Registration
// order is evaluation order, so more specific strategies register first.
type Registry struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	scorers []decision.Scorer
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register appends a scorer. Duplicate names are rejected so a misconfigured
// wiring cannot double-count a strategy's votes.
func (r *Registry) Register(s decision.Scorer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.scorers {
		if existing.Name() == s.Name() {
			if r.logger != nil {
				r.logger.Warn("Duplicate strategy registration ignored",
					zap.String("strategy", s.Name()))
			}
			return false
		}
	}
	r.scorers = append(r.scorers, s)
	if r.logger != nil {
		r.logger.Info("Registered strategy", zap.String("strategy", s.Name()))
	}
	return true
}

// Scorers returns the registered scorers in registration order.
func (r *Registry) Scorers() []decision.Scorer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]decision.Scorer, len(r.scorers))
	copy(out, r.scorers)
	return out
}

// Default builds the registry used by a live session.
func Default(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(NewBattleInitiation())
	r.Register(NewDeployPower())
	return r
}
