package exercise

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

// Source supplies the ordered exercise list at startup
type Source interface {
	Exercises(ctx context.Context) ([]domain.Exercise, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context) ([]domain.Exercise, error)

// Exercises calls f(ctx)
func (f SourceFunc) Exercises(ctx context.Context) ([]domain.Exercise, error) {
	return f(ctx)
}

// Catalog provides read-only, ordered access to the exercises loaded at startup
type Catalog struct {
	mu        sync.RWMutex
	order     []string
	exercises map[string]domain.Exercise
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		exercises: make(map[string]domain.Exercise),
	}
}

// LoadCatalog creates a catalog and fills it from src
func LoadCatalog(ctx context.Context, src Source) (*Catalog, error) {
	c := NewCatalog()
	if err := c.Load(ctx, src); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the catalog contents with the exercises from src.
// The list must be non-empty, every entry valid, and IDs unique.
func (c *Catalog) Load(ctx context.Context, src Source) error {
	list, err := src.Exercises(ctx)
	if err != nil {
		return fmt.Errorf("load exercises: %w", err)
	}
	if len(list) == 0 {
		return domain.ErrEmptyCatalog
	}

	order := make([]string, 0, len(list))
	exercises := make(map[string]domain.Exercise, len(list))
	for i := range list {
		ex := list[i]
		if err := ex.Validate(); err != nil {
			return err
		}
		if _, dup := exercises[ex.ID]; dup {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateID, ex.ID)
		}
		if ex.Hints == nil {
			ex.Hints = []string{}
		}
		order = append(order, ex.ID)
		exercises[ex.ID] = ex.Clone()
	}

	c.mu.Lock()
	c.order = order
	c.exercises = exercises
	c.mu.Unlock()

	return nil
}

// List returns copies of all exercises in catalog order
func (c *Catalog) List() []domain.Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Exercise, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.exercises[id].Clone())
	}
	return out
}

// Get returns a copy of the exercise with the given ID
func (c *Catalog) Get(id string) (domain.Exercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ex, ok := c.exercises[id]
	if !ok {
		return domain.Exercise{}, fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, id)
	}
	return ex.Clone(), nil
}

// Len returns the number of exercises
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Stats returns statistics about loaded exercises
func (c *Catalog) Stats() CatalogStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CatalogStats{
		ExerciseCount: len(c.order),
		ByDifficulty:  make(map[string]int),
		ByLanguage:    make(map[string]int),
	}

	for _, ex := range c.exercises {
		stats.ByDifficulty[string(ex.Difficulty)]++
		stats.ByLanguage[ex.Language]++
	}

	return stats
}

// CatalogStats holds statistics about the catalog
type CatalogStats struct {
	ExerciseCount int            `json:"exercise_count"`
	ByDifficulty  map[string]int `json:"by_difficulty"`
	ByLanguage    map[string]int `json:"by_language"`
}
