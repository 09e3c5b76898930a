package clinic

import (
	"sort"

	"pet-vaccination-tracker/internal/domain/vaccinations"
)

// OverviewWindowDays: ventana de "próximas" del overview de mascota.
const OverviewWindowDays = 7

// DueItem es una vacunación desnormalizada con datos de mascota y dueño,
// lista para dashboard o recordatorio.
type DueItem struct {
	Vaccination vaccinations.Vaccination

	PetName    string
	OwnerID    string
	OwnerName  string
	OwnerPhone string
	OwnerEmail string

	DaysUntil int
	Status    vaccinations.Status
}

// PetOverview resume el estado de vacunación de una mascota.
type PetOverview struct {
	PetID    string
	Total    int
	Upcoming int // vencen en [0, OverviewWindowDays]
	Overdue  int
}

// VaccinationsDueWithin devuelve las vacunaciones con NextDueDate entre hoy y
// hoy+days (ambos inclusive), ordenadas por fecha. Las vencidas no entran.
func (s *Service) VaccinationsDueWithin(days int) []DueItem {
	if days < 0 {
		days = 0
	}
	snap := s.Snapshot()
	now := snap.TakenAt

	out := make([]DueItem, 0)
	for _, p := range snap.Pets {
		owner, _ := snap.Owner(p.OwnerID)
		for _, v := range p.Vaccinations {
			d := vaccinations.DaysUntil(v.NextDueDate, now)
			if d < 0 || d > days {
				continue
			}
			out = append(out, DueItem{
				Vaccination: v,
				PetName:     p.Name,
				OwnerID:     owner.ID,
				OwnerName:   owner.Name,
				OwnerPhone:  owner.Phone,
				OwnerEmail:  owner.Email,
				DaysUntil:   d,
				Status:      vaccinations.ClassifyDashboard(v.NextDueDate, now),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Vaccination.NextDueDate.Before(out[j].Vaccination.NextDueDate)
	})
	return out
}

// VaccinationsForPet devuelve el historial de la mascota, más reciente primero.
func (s *Service) VaccinationsForPet(petID string) ([]vaccinations.Vaccination, error) {
	p, err := s.Pet(petID)
	if err != nil {
		return nil, err
	}
	list := p.Vaccinations
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DateAdministered.After(list[j].DateAdministered)
	})
	return list, nil
}

// OverdueVaccinationsForPet devuelve las vacunaciones con fecha ya pasada.
func (s *Service) OverdueVaccinationsForPet(petID string) ([]vaccinations.Vaccination, error) {
	p, err := s.Pet(petID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	out := make([]vaccinations.Vaccination, 0)
	for _, v := range p.Vaccinations {
		if vaccinations.Classify(v.NextDueDate, now) == vaccinations.StatusOverdue {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) PetOverview(petID string) (PetOverview, error) {
	p, err := s.Pet(petID)
	if err != nil {
		return PetOverview{}, err
	}
	now := s.now()

	ov := PetOverview{PetID: p.ID, Total: len(p.Vaccinations)}
	for _, v := range p.Vaccinations {
		d := vaccinations.DaysUntil(v.NextDueDate, now)
		switch {
		case d < 0:
			ov.Overdue++
		case d <= OverviewWindowDays:
			ov.Upcoming++
		}
	}
	return ov, nil
}

// PetsForOwner lista las mascotas de un dueño.
func (s *Service) PetsForOwner(ownerID string) ([]Pet, error) {
	if _, err := s.Owner(ownerID); err != nil {
		return nil, err
	}
	out := make([]Pet, 0)
	for _, p := range s.Pets() {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}
