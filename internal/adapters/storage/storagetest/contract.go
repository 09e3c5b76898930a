// Package storagetest tiene los tests de contrato que corren contra cada
// adapter de storage (memory, sqlite, postgres).
package storagetest

import (
	"context"
	"testing"
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/reminders"
	"pet-vaccination-tracker/internal/domain/vaccinations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := vaccinations.ParseDate(s)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T { return &v }

// RunClinicRepo ejercita clinic.Repository. newRepo tiene que devolver un
// store vacío en cada llamada.
func RunClinicRepo(t *testing.T, newRepo func(t *testing.T) clinic.Repository) {
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	seed := func(t *testing.T) clinic.Repository {
		t.Helper()
		r := newRepo(t)
		id, err := r.AddOwner(ctx, clinic.Owner{ID: "owner-1", Name: "John", Phone: "555-0100", Email: "john@example.com", CreatedAt: created})
		require.NoError(t, err)
		require.Equal(t, "owner-1", id)

		id, err = r.AddPet(ctx, clinic.Pet{
			ID: "pet-1", OwnerID: "owner-1", Name: "Max", Species: clinic.SpeciesDog,
			Breed: "Lab", Age: 3, Weight: ptr(30.5), CreatedAt: created,
			Vaccinations: []vaccinations.Vaccination{},
		})
		require.NoError(t, err)
		require.Equal(t, "pet-1", id)
		return r
	}

	t.Run("round trip", func(t *testing.T) {
		r := seed(t)

		owners, err := r.GetOwners(ctx)
		require.NoError(t, err)
		require.Len(t, owners, 1)
		assert.Equal(t, "John", owners[0].Name)
		assert.Equal(t, "john@example.com", owners[0].Email)
		assert.True(t, created.Equal(owners[0].CreatedAt))

		pets, err := r.GetPets(ctx)
		require.NoError(t, err)
		require.Len(t, pets, 1)
		assert.Equal(t, "Max", pets[0].Name)
		assert.Equal(t, clinic.SpeciesDog, pets[0].Species)
		require.NotNil(t, pets[0].Weight)
		assert.InDelta(t, 30.5, *pets[0].Weight, 0.0001)
		assert.Empty(t, pets[0].Vaccinations)
	})

	t.Run("add pet unknown owner", func(t *testing.T) {
		r := seed(t)
		_, err := r.AddPet(ctx, clinic.Pet{ID: "pet-2", OwnerID: "ghost", Name: "Rex", Species: clinic.SpeciesDog, CreatedAt: created})
		assert.ErrorIs(t, err, clinic.ErrOwnerNotFound)

		pets, err := r.GetPets(ctx)
		require.NoError(t, err)
		assert.Len(t, pets, 1)
	})

	t.Run("add pet duplicate id", func(t *testing.T) {
		r := seed(t)
		_, err := r.AddPet(ctx, clinic.Pet{ID: "pet-1", OwnerID: "owner-1", Name: "Other", Species: clinic.SpeciesCat, CreatedAt: created})
		assert.ErrorIs(t, err, clinic.ErrDuplicatePet)

		pets, err := r.GetPets(ctx)
		require.NoError(t, err)
		require.Len(t, pets, 1)
		assert.Equal(t, "Max", pets[0].Name)
	})

	t.Run("duplicate owner", func(t *testing.T) {
		r := seed(t)
		_, err := r.AddOwner(ctx, clinic.Owner{ID: "owner-1", Name: "X", Phone: "1", CreatedAt: created})
		assert.ErrorIs(t, err, clinic.ErrDuplicateOwner)
	})

	t.Run("vaccinations are written one at a time", func(t *testing.T) {
		r := seed(t)
		v1 := vaccinations.Vaccination{ID: "v1", PetID: "pet-1", Type: vaccinations.TypeRabies, DateAdministered: date(t, "2024-05-02"), NextDueDate: date(t, "2025-05-02"), SelectedInterval: "rabies-1y"}
		v2 := vaccinations.Vaccination{ID: "v2", PetID: "pet-1", Type: vaccinations.TypeDeworming, DateAdministered: date(t, "2024-05-10"), NextDueDate: date(t, "2024-05-24"), SelectedInterval: "deworming-2w", Notes: "oral"}
		require.NoError(t, r.AddVaccination(ctx, "pet-1", v1))
		require.NoError(t, r.AddVaccination(ctx, "pet-1", v2))
		assert.ErrorIs(t, r.AddVaccination(ctx, "pet-1", v1), clinic.ErrDuplicateVaccination)

		pets, err := r.GetPets(ctx)
		require.NoError(t, err)
		require.Len(t, pets[0].Vaccinations, 2)
		v := pets[0].Vaccinations[0]
		assert.Equal(t, "v1", v.ID)
		assert.Equal(t, "pet-1", v.PetID)
		assert.True(t, date(t, "2025-05-02").Equal(v.NextDueDate))
		assert.Equal(t, "oral", pets[0].Vaccinations[1].Notes)

		require.NoError(t, r.MarkReminderSent(ctx, "pet-1", "v1"))
		require.NoError(t, r.MarkReminderSent(ctx, "pet-1", "v1"))
		require.NoError(t, r.DeleteVaccination(ctx, "pet-1", "v2"))
		require.NoError(t, r.UpdatePet(ctx, "pet-1", clinic.PetPatch{Name: ptr("Maximus")}))

		pets, err = r.GetPets(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Maximus", pets[0].Name)
		require.Len(t, pets[0].Vaccinations, 1)
		assert.True(t, pets[0].Vaccinations[0].ReminderSent)

		assert.ErrorIs(t, r.AddVaccination(ctx, "nope", v2), clinic.ErrNotFound)
		assert.ErrorIs(t, r.DeleteVaccination(ctx, "pet-1", "v2"), clinic.ErrNotFound)
		assert.ErrorIs(t, r.MarkReminderSent(ctx, "pet-1", "ghost"), clinic.ErrNotFound)
	})

	t.Run("stale service never resets reminder flag", func(t *testing.T) {
		r := seed(t)
		now := clinic.WithClock(func() time.Time { return date(t, "2025-04-30") })
		a := clinic.NewService(r, nil, now)
		b := clinic.NewService(r, nil, now)
		require.NoError(t, a.Load(ctx))

		v, err := a.AddVaccination(ctx, "pet-1", clinic.VaccinationInput{
			Type: vaccinations.TypeRabies, DateAdministered: date(t, "2024-05-02"), IntervalID: "rabies-1y",
		})
		require.NoError(t, err)
		require.NoError(t, b.Load(ctx))

		// a marca; b sigue con el snapshot viejo y escribe otra vacunación
		require.NoError(t, a.MarkReminderSent(ctx, "pet-1", v.ID))
		other, err := b.AddVaccination(ctx, "pet-1", clinic.VaccinationInput{
			Type: vaccinations.TypeDeworming, DateAdministered: date(t, "2025-04-20"), IntervalID: "deworming-2w",
		})
		require.NoError(t, err)
		require.NoError(t, b.DeleteVaccination(ctx, "pet-1", other.ID))

		fresh := clinic.NewService(r, nil, now)
		require.NoError(t, fresh.Load(ctx))
		list, err := fresh.VaccinationsForPet("pet-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, v.ID, list[0].ID)
		assert.True(t, list[0].ReminderSent)
	})

	t.Run("not found", func(t *testing.T) {
		r := seed(t)
		assert.ErrorIs(t, r.UpdatePet(ctx, "nope", clinic.PetPatch{Name: ptr("x")}), clinic.ErrNotFound)
		assert.ErrorIs(t, r.DeletePet(ctx, "nope"), clinic.ErrNotFound)
		assert.ErrorIs(t, r.DeleteOwner(ctx, "nope"), clinic.ErrNotFound)
		assert.ErrorIs(t, r.UpdateOwner(ctx, "nope", clinic.OwnerPatch{Name: ptr("x")}), clinic.ErrNotFound)
	})

	t.Run("update owner", func(t *testing.T) {
		r := seed(t)
		require.NoError(t, r.UpdateOwner(ctx, "owner-1", clinic.OwnerPatch{Phone: ptr("555-9999"), Notes: ptr("prefers whatsapp")}))

		owners, err := r.GetOwners(ctx)
		require.NoError(t, err)
		assert.Equal(t, "555-9999", owners[0].Phone)
		assert.Equal(t, "prefers whatsapp", owners[0].Notes)
		assert.Equal(t, "John", owners[0].Name)
	})

	t.Run("delete owner cascades", func(t *testing.T) {
		r := seed(t)
		_, err := r.AddOwner(ctx, clinic.Owner{ID: "owner-2", Name: "Jane", Phone: "1", CreatedAt: created})
		require.NoError(t, err)
		_, err = r.AddPet(ctx, clinic.Pet{ID: "pet-2", OwnerID: "owner-2", Name: "Whiskers", Species: clinic.SpeciesCat, CreatedAt: created})
		require.NoError(t, err)

		require.NoError(t, r.DeleteOwner(ctx, "owner-1"))

		pets, err := r.GetPets(ctx)
		require.NoError(t, err)
		require.Len(t, pets, 1)
		assert.Equal(t, "pet-2", pets[0].ID)
	})

	t.Run("delete pet", func(t *testing.T) {
		r := seed(t)
		require.NoError(t, r.DeletePet(ctx, "pet-1"))

		pets, err := r.GetPets(ctx)
		require.NoError(t, err)
		assert.Empty(t, pets)

		owners, err := r.GetOwners(ctx)
		require.NoError(t, err)
		assert.Len(t, owners, 1)
	})
}

// RunAttemptRepo ejercita reminders.AttemptRepository.
func RunAttemptRepo(t *testing.T, newRepo func(t *testing.T) reminders.AttemptRepository) {
	ctx := context.Background()
	base := time.Date(2025, 4, 30, 8, 0, 0, 0, time.UTC)

	r := newRepo(t)
	attempts := []reminders.Attempt{
		{ID: "a1", ScanID: "s1", PetID: "pet-1", VaccinationID: "v1", OwnerID: "o1", Channel: "log", Outcome: reminders.OutcomeFailed, Reason: "timeout", AttemptedAt: base},
		{ID: "a2", ScanID: "s2", PetID: "pet-1", VaccinationID: "v1", OwnerID: "o1", Channel: "log", Outcome: reminders.OutcomeSent, AttemptedAt: base.Add(24 * time.Hour)},
		{ID: "a3", ScanID: "s2", PetID: "pet-1", VaccinationID: "v2", Channel: "log", Outcome: reminders.OutcomeSkipped, Reason: "owner not found", AttemptedAt: base.Add(24 * time.Hour).Add(time.Second)},
		{ID: "a4", ScanID: "s2", PetID: "pet-2", VaccinationID: "v9", Channel: "log", Outcome: reminders.OutcomeSent, AttemptedAt: base},
	}
	for _, a := range attempts {
		require.NoError(t, r.Append(ctx, a))
	}

	t.Run("by pet newest first", func(t *testing.T) {
		list, err := r.ListByPet(ctx, "pet-1", reminders.ListFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"a3", "a2", "a1"}, []string{list[0].ID, list[1].ID, list[2].ID})
		assert.Equal(t, "timeout", list[2].Reason)
		assert.True(t, base.Equal(list[2].AttemptedAt))
	})

	t.Run("filters", func(t *testing.T) {
		list, err := r.ListByPet(ctx, "pet-1", reminders.ListFilter{Outcomes: []reminders.Outcome{reminders.OutcomeSent, reminders.OutcomeFailed}})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = r.ListByPet(ctx, "pet-1", reminders.ListFilter{VaccinationID: "v2"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, reminders.OutcomeSkipped, list[0].Outcome)

		from := base.Add(time.Hour)
		list, err = r.ListByPet(ctx, "pet-1", reminders.ListFilter{From: &from})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = r.ListByPet(ctx, "pet-1", reminders.ListFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "a3", list[0].ID)
	})

	t.Run("unknown pet", func(t *testing.T) {
		list, err := r.ListByPet(ctx, "nope", reminders.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
