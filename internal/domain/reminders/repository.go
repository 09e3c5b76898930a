package reminders

import (
	"context"
	"time"
)

// AttemptRepository persiste el log de intentos de recordatorio.
type AttemptRepository interface {
	Append(ctx context.Context, a Attempt) error
	ListByPet(ctx context.Context, petID string, filter ListFilter) ([]Attempt, error)
}

type ListFilter struct {
	Outcomes      []Outcome
	VaccinationID string
	From          *time.Time
	To            *time.Time
	Limit         int
}

// DefaultListLimit y MaxListLimit acotan ListByPet.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Matches aplica el filtro (sin Limit) a un intento. Lo usan los adapters
// que filtran en memoria.
func (f ListFilter) Matches(a Attempt) bool {
	if len(f.Outcomes) > 0 {
		ok := false
		for _, o := range f.Outcomes {
			if a.Outcome == o {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.VaccinationID != "" && a.VaccinationID != f.VaccinationID {
		return false
	}
	if f.From != nil && a.AttemptedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && a.AttemptedAt.After(*f.To) {
		return false
	}
	return true
}

// EffectiveLimit normaliza Limit a [1, MaxListLimit].
func (f ListFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}
