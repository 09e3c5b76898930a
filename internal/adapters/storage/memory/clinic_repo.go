package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
)

type clinicRepo struct {
	mu     sync.RWMutex
	owners map[string]clinic.Owner
	pets   map[string]clinic.Pet
}

// NewClinicRepo devuelve un clinic.Repository en memoria (dev / tests).
func NewClinicRepo() clinic.Repository {
	return &clinicRepo{
		owners: make(map[string]clinic.Owner),
		pets:   make(map[string]clinic.Pet),
	}
}

func (r *clinicRepo) GetOwners(ctx context.Context) ([]clinic.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]clinic.Owner, 0, len(r.owners))
	for _, o := range r.owners {
		out = append(out, o)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *clinicRepo) GetPets(ctx context.Context) ([]clinic.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]clinic.Pet, 0, len(r.pets))
	for _, p := range r.pets {
		out = append(out, copyPet(p))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *clinicRepo) AddOwner(ctx context.Context, o clinic.Owner) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return "", errors.New("owner id required")
	}
	if _, exists := r.owners[o.ID]; exists {
		return "", clinic.ErrDuplicateOwner
	}
	r.owners[o.ID] = o
	return o.ID, nil
}

func (r *clinicRepo) UpdateOwner(ctx context.Context, id string, patch clinic.OwnerPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.owners[id]
	if !ok {
		return clinic.ErrNotFound
	}
	r.owners[id] = patch.Apply(o)
	return nil
}

// DeleteOwner borra el dueño y sus mascotas.
func (r *clinicRepo) DeleteOwner(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owners[id]; !ok {
		return clinic.ErrNotFound
	}
	delete(r.owners, id)
	for pid, p := range r.pets {
		if p.OwnerID == id {
			delete(r.pets, pid)
		}
	}
	return nil
}

func (r *clinicRepo) AddPet(ctx context.Context, p clinic.Pet) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return "", errors.New("pet id required")
	}
	if _, ok := r.owners[p.OwnerID]; !ok {
		return "", clinic.ErrOwnerNotFound
	}
	if _, exists := r.pets[p.ID]; exists {
		return "", clinic.ErrDuplicatePet
	}
	r.pets[p.ID] = copyPet(p)
	return p.ID, nil
}

func (r *clinicRepo) UpdatePet(ctx context.Context, id string, patch clinic.PetPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pets[id]
	if !ok {
		return clinic.ErrNotFound
	}
	r.pets[id] = patch.Apply(p)
	return nil
}

func (r *clinicRepo) DeletePet(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pets[id]; !ok {
		return clinic.ErrNotFound
	}
	delete(r.pets, id)
	return nil
}

func (r *clinicRepo) AddVaccination(ctx context.Context, petID string, v vaccinations.Vaccination) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pets[petID]
	if !ok {
		return clinic.ErrNotFound
	}
	if _, dup := findVaccination(p, v.ID); dup {
		return clinic.ErrDuplicateVaccination
	}
	p = copyPet(p)
	p.Vaccinations = append(p.Vaccinations, v)
	r.pets[petID] = p
	return nil
}

func (r *clinicRepo) DeleteVaccination(ctx context.Context, petID, vaccinationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pets[petID]
	if !ok {
		return clinic.ErrNotFound
	}
	i, ok := findVaccination(p, vaccinationID)
	if !ok {
		return clinic.ErrNotFound
	}
	p = copyPet(p)
	p.Vaccinations = append(p.Vaccinations[:i], p.Vaccinations[i+1:]...)
	r.pets[petID] = p
	return nil
}

func (r *clinicRepo) MarkReminderSent(ctx context.Context, petID, vaccinationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pets[petID]
	if !ok {
		return clinic.ErrNotFound
	}
	i, ok := findVaccination(p, vaccinationID)
	if !ok {
		return clinic.ErrNotFound
	}
	p = copyPet(p)
	p.Vaccinations[i].ReminderSent = true
	r.pets[petID] = p
	return nil
}

func findVaccination(p clinic.Pet, id string) (int, bool) {
	for i, v := range p.Vaccinations {
		if v.ID == id {
			return i, true
		}
	}
	return -1, false
}

func copyPet(p clinic.Pet) clinic.Pet {
	out := p
	if p.Weight != nil {
		w := *p.Weight
		out.Weight = &w
	}
	out.Vaccinations = append([]vaccinations.Vaccination{}, p.Vaccinations...)
	return out
}
