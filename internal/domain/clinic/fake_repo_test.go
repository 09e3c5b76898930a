package clinic

import (
	"context"
	"sync"

	"pet-vaccination-tracker/internal/domain/vaccinations"
)

// fakeRepo es un Repository en memoria para tests del paquete. failNext
// permite simular una falla de transporte en la próxima escritura.
type fakeRepo struct {
	mu     sync.Mutex
	owners map[string]Owner
	pets   map[string]Pet

	failNext error
	writes   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{owners: map[string]Owner{}, pets: map[string]Pet{}}
}

func (r *fakeRepo) fail() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakeRepo) GetOwners(_ context.Context) ([]Owner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Owner, 0, len(r.owners))
	for _, o := range r.owners {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeRepo) GetPets(_ context.Context) ([]Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pet, 0, len(r.pets))
	for _, p := range r.pets {
		out = append(out, p.clone())
	}
	return out, nil
}

func (r *fakeRepo) AddOwner(_ context.Context, o Owner) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return "", err
	}
	if _, ok := r.owners[o.ID]; ok {
		return "", ErrDuplicateOwner
	}
	r.writes++
	r.owners[o.ID] = o
	return o.ID, nil
}

func (r *fakeRepo) UpdateOwner(_ context.Context, id string, patch OwnerPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	o, ok := r.owners[id]
	if !ok {
		return ErrNotFound
	}
	r.writes++
	r.owners[id] = patch.Apply(o)
	return nil
}

func (r *fakeRepo) DeleteOwner(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	if _, ok := r.owners[id]; !ok {
		return ErrNotFound
	}
	r.writes++
	delete(r.owners, id)
	for pid, p := range r.pets {
		if p.OwnerID == id {
			delete(r.pets, pid)
		}
	}
	return nil
}

func (r *fakeRepo) AddPet(_ context.Context, p Pet) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return "", err
	}
	if _, ok := r.owners[p.OwnerID]; !ok {
		return "", ErrOwnerNotFound
	}
	if _, ok := r.pets[p.ID]; ok {
		return "", ErrDuplicatePet
	}
	r.writes++
	r.pets[p.ID] = p.clone()
	return p.ID, nil
}

func (r *fakeRepo) UpdatePet(_ context.Context, id string, patch PetPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	p, ok := r.pets[id]
	if !ok {
		return ErrNotFound
	}
	r.writes++
	r.pets[id] = patch.Apply(p)
	return nil
}

func (r *fakeRepo) DeletePet(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	if _, ok := r.pets[id]; !ok {
		return ErrNotFound
	}
	r.writes++
	delete(r.pets, id)
	return nil
}

func (r *fakeRepo) AddVaccination(_ context.Context, petID string, v vaccinations.Vaccination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	p, ok := r.pets[petID]
	if !ok {
		return ErrNotFound
	}
	if _, dup := p.findVaccination(v.ID); dup {
		return ErrDuplicateVaccination
	}
	r.writes++
	p = p.clone()
	p.Vaccinations = append(p.Vaccinations, v)
	r.pets[petID] = p
	return nil
}

func (r *fakeRepo) DeleteVaccination(_ context.Context, petID, vaccinationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	p, ok := r.pets[petID]
	if !ok {
		return ErrNotFound
	}
	i, ok := p.findVaccination(vaccinationID)
	if !ok {
		return ErrNotFound
	}
	r.writes++
	p = p.clone()
	p.Vaccinations = append(p.Vaccinations[:i], p.Vaccinations[i+1:]...)
	r.pets[petID] = p
	return nil
}

func (r *fakeRepo) MarkReminderSent(_ context.Context, petID, vaccinationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	p, ok := r.pets[petID]
	if !ok {
		return ErrNotFound
	}
	i, ok := p.findVaccination(vaccinationID)
	if !ok {
		return ErrNotFound
	}
	r.writes++
	p = p.clone()
	p.Vaccinations[i].ReminderSent = true
	r.pets[petID] = p
	return nil
}
