package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pet-vaccination-tracker/internal/domain/reminders"
)

type attemptRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.Attempt
}

func NewAttemptRepo() reminders.AttemptRepository {
	return &attemptRepo{
		byID: make(map[string]reminders.Attempt),
	}
}

func (r *attemptRepo) Append(ctx context.Context, a reminders.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("attempt id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("attempt already exists")
	}

	r.byID[a.ID] = a
	return nil
}

func (r *attemptRepo) ListByPet(ctx context.Context, petID string, filter reminders.ListFilter) ([]reminders.Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Attempt, 0)
	for _, a := range r.byID {
		if a.PetID != petID {
			continue
		}
		if !filter.Matches(a) {
			continue
		}
		out = append(out, a)
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		if out[i].AttemptedAt.Equal(out[j].AttemptedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].AttemptedAt.After(out[j].AttemptedAt)
	})

	if limit := filter.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
