package cards

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Library is a read-only template store backed by a JSON card file.
type Library struct {
	mu        sync.RWMutex
	templates map[string]*Template
	logger    *zap.Logger
}

// libraryFile is the on-disk shape of a card file.
type libraryFile struct {
	Cards []*Template `json:"cards"`
}

// NewLibrary creates an empty library.
func NewLibrary(logger *zap.Logger) *Library {
	return &Library{
		templates: make(map[string]*Template),
		logger:    logger,
	}
}

// LoadFile reads a JSON card file and merges its templates into the library.
// Duplicate ids overwrite earlier entries, so later files can patch errata.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read card file %s: %w", path, err)
	}

	var file libraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse card file %s: %w", path, err)
	}

	l.mu.Lock()
	for _, tpl := range file.Cards {
		if tpl == nil || tpl.ID == "" {
			continue
		}
		l.templates[tpl.ID] = tpl
	}
	count := len(l.templates)
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Info("card library loaded",
			zap.String("path", path),
			zap.Int("templates", count),
		)
	}

	return nil
}

// Add inserts a single template. Intended for tests and errata overrides.
func (l *Library) Add(tpl *Template) {
	if tpl == nil || tpl.ID == "" {
		return
	}
	l.mu.Lock()
	l.templates[tpl.ID] = tpl
	l.mu.Unlock()
}

// Template returns the template for the given id.
func (l *Library) Template(id string) (*Template, bool) {
	l.mu.RLock()
	tpl, ok := l.templates[id]
	l.mu.RUnlock()
	return tpl, ok
}

// Size returns the number of loaded templates.
func (l *Library) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.templates)
}
