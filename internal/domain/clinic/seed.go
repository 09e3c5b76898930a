package clinic

import (
	"context"
	"fmt"

	"pet-vaccination-tracker/internal/domain/vaccinations"
)

type seedVaccination struct {
	petID      string
	typ        vaccinations.Type
	intervalID string
	dueInDays  int
	notes      string
}

// SeedSampleData carga dueños, mascotas y vacunaciones de ejemplo con fechas
// relativas a hoy. Sólo corre si el store está vacío; devuelve false si no hizo nada.
func (s *Service) SeedSampleData(ctx context.Context) (bool, error) {
	if !s.IsEmpty() {
		return false, nil
	}

	owners := []OwnerInput{
		{ID: "owner-1", Name: "John Smith", Phone: "+1 555 0100", Email: "john@example.com", Address: "123 Main St"},
		{ID: "owner-2", Name: "Jane Doe", Phone: "+1 555 0101", Email: "jane@example.com", Address: "456 Oak Ave"},
	}
	for _, o := range owners {
		if _, err := s.AddOwner(ctx, o); err != nil {
			return false, fmt.Errorf("seed owner %s: %w", o.ID, err)
		}
	}

	w := func(v float64) *float64 { return &v }
	pets := []PetInput{
		{ID: "pet-1", OwnerID: "owner-1", Name: "Max", Species: SpeciesDog, Breed: "Golden Retriever", Age: 5, Weight: w(70)},
		{ID: "pet-2", OwnerID: "owner-2", Name: "Whiskers", Species: SpeciesCat, Breed: "Siamese", Age: 3, Weight: w(10)},
		{ID: "pet-3", OwnerID: "owner-1", Name: "Buddy", Species: SpeciesDog, Breed: "Labrador", Age: 2, Weight: w(65)},
	}
	for _, p := range pets {
		if _, err := s.AddPet(ctx, p); err != nil {
			return false, fmt.Errorf("seed pet %s: %w", p.ID, err)
		}
	}

	// administered = vencimiento deseado - días del intervalo, así
	// NextDueDate sigue saliendo del catálogo.
	today := vaccinations.Date(s.now())
	vax := []seedVaccination{
		{petID: "pet-1", typ: vaccinations.TypeRabies, intervalID: "rabies-1y", dueInDays: 10, notes: "Annual booster"},
		{petID: "pet-2", typ: vaccinations.TypeDeworming, intervalID: "deworming-2w", dueInDays: 2},
		{petID: "pet-3", typ: vaccinations.TypeAntiFleas, intervalID: "antifleas-2m", dueInDays: 10},
		{petID: "pet-3", typ: vaccinations.TypeViralVaccine, intervalID: "viral-20d", dueInDays: 2},
	}
	for _, sv := range vax {
		in, err := vaccinations.FindInterval(sv.typ, sv.intervalID)
		if err != nil {
			return false, err
		}
		_, err = s.AddVaccination(ctx, sv.petID, VaccinationInput{
			Type:             sv.typ,
			DateAdministered: today.AddDate(0, 0, sv.dueInDays-in.Days),
			IntervalID:       sv.intervalID,
			Notes:            sv.notes,
		})
		if err != nil {
			return false, fmt.Errorf("seed vaccination for %s: %w", sv.petID, err)
		}
	}

	s.log.Info("sample data seeded", map[string]any{"owners": len(owners), "pets": len(pets)})
	return true, nil
}
