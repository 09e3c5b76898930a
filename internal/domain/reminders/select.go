package reminders

import (
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
)

// DefaultWindowDays es la ventana de disparo del recordatorio (no confundir
// con la ventana del dashboard).
const DefaultWindowDays = vaccinations.DueSoonDays

// Candidate es una vacunación seleccionada con su mascota y dueño resueltos.
type Candidate struct {
	Pet         clinic.Pet
	Owner       clinic.Owner
	Vaccination vaccinations.Vaccination
	DaysUntil   int
}

// Skip es una vacunación que cumple el predicado pero no se pudo resolver.
type Skip struct {
	PetID         string
	OwnerID       string
	VaccinationID string
	Reason        string
}

type Selection struct {
	Due     []Candidate
	Skipped []Skip
}

// Select aplica el predicado del recordatorio sobre el snapshot:
//
//	!ReminderSent && 0 <= DaysUntil(due, now) <= window
//
// Las vencidas (DaysUntil < 0) no se recuerdan retroactivamente.
func Select(snap clinic.Snapshot, now time.Time, window int) Selection {
	if window < 0 {
		window = 0
	}

	owners := make(map[string]clinic.Owner, len(snap.Owners))
	for _, o := range snap.Owners {
		owners[o.ID] = o
	}

	sel := Selection{Due: []Candidate{}, Skipped: []Skip{}}
	for _, p := range snap.Pets {
		for _, v := range p.Vaccinations {
			if v.ReminderSent {
				continue
			}
			d := vaccinations.DaysUntil(v.NextDueDate, now)
			if d < 0 || d > window {
				continue
			}

			if v.PetID != p.ID {
				sel.Skipped = append(sel.Skipped, Skip{PetID: v.PetID, VaccinationID: v.ID, Reason: "pet not found"})
				continue
			}
			o, ok := owners[p.OwnerID]
			if !ok {
				sel.Skipped = append(sel.Skipped, Skip{PetID: p.ID, OwnerID: p.OwnerID, VaccinationID: v.ID, Reason: "owner not found"})
				continue
			}

			sel.Due = append(sel.Due, Candidate{Pet: p, Owner: o, Vaccination: v, DaysUntil: d})
		}
	}
	return sel
}
