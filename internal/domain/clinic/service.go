package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pet-vaccination-tracker/internal/domain/vaccinations"
	"pet-vaccination-tracker/internal/platform/logger"

	"github.com/google/uuid"
)

// Service es la fachada del registro de vacunaciones: mantiene el snapshot
// en memoria y es el único que habla con el Repository.
//
// Lecturas: síncronas sobre el snapshot.
// Escrituras: primero el repo, y recién cuando confirma se actualiza el snapshot.
type Service struct {
	repo  Repository
	log   logger.Logger
	now   func() time.Time
	newID func() string

	mu     sync.RWMutex
	owners []Owner
	pets   []Pet
}

type ServiceOption func(*Service)

// WithClock reemplaza el reloj del servicio (tests, CLI con --now).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, log logger.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		repo:  repo,
		log:   log.With(map[string]any{"component": "clinic"}),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Now expone el reloj del servicio (los handlers clasifican con el mismo "now").
func (s *Service) Now() time.Time {
	return s.now()
}

// Load reemplaza el snapshot con lo que devuelve el repo. Toma el lock de
// escritura durante la lectura para no pisar escrituras propias concurrentes.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owners, err := s.repo.GetOwners(ctx)
	if err != nil {
		return fmt.Errorf("load owners: %w", err)
	}
	pets, err := s.repo.GetPets(ctx)
	if err != nil {
		return fmt.Errorf("load pets: %w", err)
	}

	for i := range pets {
		for j := range pets[i].Vaccinations {
			if pets[i].Vaccinations[j].PetID != pets[i].ID {
				s.log.Warn("vaccination pet_id mismatch, fixing", map[string]any{
					"pet_id":         pets[i].ID,
					"vaccination_id": pets[i].Vaccinations[j].ID,
				})
				pets[i].Vaccinations[j].PetID = pets[i].ID
			}
		}
	}

	s.owners = owners
	s.pets = pets

	s.log.Debug("records loaded", map[string]any{"owners": len(owners), "pets": len(pets)})
	return nil
}

// -------------------------
// Owners
// -------------------------

type OwnerInput struct {
	ID      string // opcional; si viene vacío se genera
	Name    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

func (s *Service) AddOwner(ctx context.Context, in OwnerInput) (Owner, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Owner{}, invalid("owner name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return Owner{}, invalid("owner phone is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.newID()
	}
	if _, ok := s.ownerIndex(id); ok {
		return Owner{}, ErrDuplicateOwner
	}

	o := Owner{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Address:   strings.TrimSpace(in.Address),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: s.now(),
	}

	storedID, err := s.repo.AddOwner(ctx, o)
	if err != nil {
		return Owner{}, err
	}
	if storedID != "" {
		o.ID = storedID
	}

	s.owners = append(s.owners, o)
	s.log.Info("owner added", map[string]any{"owner_id": o.ID})
	return o, nil
}

// UpdateOwner edita datos de contacto.
func (s *Service) UpdateOwner(ctx context.Context, id string, patch OwnerPatch) (Owner, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Owner{}, invalid("owner name cannot be empty")
	}
	if patch.Phone != nil && strings.TrimSpace(*patch.Phone) == "" {
		return Owner{}, invalid("owner phone cannot be empty")
	}
	patch = trimOwnerPatch(patch)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.ownerIndex(id)
	if !ok {
		return Owner{}, ErrNotFound
	}
	if err := s.repo.UpdateOwner(ctx, id, patch); err != nil {
		return Owner{}, err
	}

	s.owners[idx] = patch.Apply(s.owners[idx])
	return s.owners[idx], nil
}

// DeleteOwner borra el dueño y, en cascada, sus mascotas.
func (s *Service) DeleteOwner(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.ownerIndex(id)
	if !ok {
		return ErrNotFound
	}
	if err := s.repo.DeleteOwner(ctx, id); err != nil {
		return err
	}

	s.owners = append(s.owners[:idx:idx], s.owners[idx+1:]...)

	kept := s.pets[:0:0]
	removed := 0
	for _, p := range s.pets {
		if p.OwnerID == id {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.pets = kept

	s.log.Info("owner deleted", map[string]any{"owner_id": id, "pets_removed": removed})
	return nil
}

func (s *Service) Owners() []Owner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Owner(nil), s.owners...)
}

func (s *Service) Owner(id string) (Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.ownerIndex(id)
	if !ok {
		return Owner{}, ErrNotFound
	}
	return s.owners[idx], nil
}

// -------------------------
// Pets
// -------------------------

type PetInput struct {
	ID      string // opcional; si viene vacío se genera
	OwnerID string
	Name    string
	Species Species
	Breed   string
	Age     int
	Weight  *float64
}

func (s *Service) AddPet(ctx context.Context, in PetInput) (Pet, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, invalid("pet name is required")
	}
	if !in.Species.Valid() {
		return Pet{}, invalid(fmt.Sprintf("unknown species %q", string(in.Species)))
	}
	if in.Age < 0 {
		return Pet{}, invalid("age must be >= 0")
	}
	if in.Weight != nil && *in.Weight < 0 {
		return Pet{}, invalid("weight must be >= 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ownerID := strings.TrimSpace(in.OwnerID)
	if _, ok := s.ownerIndex(ownerID); !ok {
		return Pet{}, ErrOwnerNotFound
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.newID()
	}
	if _, ok := s.petIndex(id); ok {
		return Pet{}, ErrDuplicatePet
	}

	p := Pet{
		ID:           id,
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(in.Name),
		Species:      in.Species,
		Breed:        strings.TrimSpace(in.Breed),
		Age:          in.Age,
		Weight:       in.Weight,
		Vaccinations: []vaccinations.Vaccination{},
		CreatedAt:    s.now(),
	}

	storedID, err := s.repo.AddPet(ctx, p)
	if err != nil {
		return Pet{}, err
	}
	if storedID != "" {
		p.ID = storedID
	}

	s.pets = append(s.pets, p)
	s.log.Info("pet added", map[string]any{"pet_id": p.ID, "owner_id": p.OwnerID})
	return p.clone(), nil
}

// DeletePet borra la mascota y sus vacunaciones. No toca al dueño.
func (s *Service) DeletePet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.petIndex(id)
	if !ok {
		return ErrNotFound
	}
	if err := s.repo.DeletePet(ctx, id); err != nil {
		return err
	}

	s.pets = append(s.pets[:idx:idx], s.pets[idx+1:]...)
	s.log.Info("pet deleted", map[string]any{"pet_id": id})
	return nil
}

func (s *Service) Pets() []Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Pet, 0, len(s.pets))
	for _, p := range s.pets {
		out = append(out, p.clone())
	}
	return out
}

func (s *Service) Pet(id string) (Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.petIndex(id)
	if !ok {
		return Pet{}, ErrNotFound
	}
	return s.pets[idx].clone(), nil
}

// SearchPets filtra por nombre o id (case-insensitive). Término vacío = todas.
func (s *Service) SearchPets(term string) []Pet {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.Pets()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Pet, 0)
	for _, p := range s.pets {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.ID), term) {
			out = append(out, p.clone())
		}
	}
	return out
}

// -------------------------
// Vaccinations
// -------------------------

type VaccinationInput struct {
	Type             vaccinations.Type
	DateAdministered time.Time
	IntervalID       string
	Notes            string
}

// AddVaccination calcula NextDueDate desde el catálogo y agrega la vacunación
// a la mascota con ReminderSent=false.
func (s *Service) AddVaccination(ctx context.Context, petID string, in VaccinationInput) (vaccinations.Vaccination, error) {
	if !in.Type.Valid() {
		return vaccinations.Vaccination{}, invalid(fmt.Sprintf("unknown vaccination type %q", string(in.Type)))
	}
	if in.DateAdministered.IsZero() {
		return vaccinations.Vaccination{}, invalid("date administered is required")
	}
	administered := vaccinations.Date(in.DateAdministered)
	if administered.After(vaccinations.Date(s.now())) {
		return vaccinations.Vaccination{}, invalid("date administered cannot be in the future")
	}
	due, err := vaccinations.NextDueDate(administered, in.IntervalID, in.Type)
	if err != nil {
		return vaccinations.Vaccination{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.petIndex(petID)
	if !ok {
		return vaccinations.Vaccination{}, ErrNotFound
	}

	v := vaccinations.Vaccination{
		ID:               s.newID(),
		PetID:            s.pets[idx].ID,
		Type:             in.Type,
		DateAdministered: administered,
		NextDueDate:      due,
		SelectedInterval: in.IntervalID,
		Notes:            strings.TrimSpace(in.Notes),
		ReminderSent:     false,
	}

	if err := s.repo.AddVaccination(ctx, petID, v); err != nil {
		return vaccinations.Vaccination{}, err
	}

	s.pets[idx].Vaccinations = append(append([]vaccinations.Vaccination(nil), s.pets[idx].Vaccinations...), v)
	s.log.Info("vaccination added", map[string]any{
		"pet_id":         petID,
		"vaccination_id": v.ID,
		"type":           string(v.Type),
		"next_due":       vaccinations.FormatDate(v.NextDueDate),
	})
	return v, nil
}

func (s *Service) DeleteVaccination(ctx context.Context, petID, vaccinationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.petIndex(petID)
	if !ok {
		return ErrNotFound
	}
	vi, ok := s.pets[idx].findVaccination(vaccinationID)
	if !ok {
		return ErrNotFound
	}

	if err := s.repo.DeleteVaccination(ctx, petID, vaccinationID); err != nil {
		return err
	}

	cur := s.pets[idx].Vaccinations
	list := make([]vaccinations.Vaccination, 0, len(cur)-1)
	list = append(list, cur[:vi]...)
	list = append(list, cur[vi+1:]...)
	s.pets[idx].Vaccinations = list
	return nil
}

// MarkReminderSent pasa ReminderSent a true. Si ya estaba en true no escribe.
// Es el único camino que toca el flag.
func (s *Service) MarkReminderSent(ctx context.Context, petID, vaccinationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.petIndex(petID)
	if !ok {
		return fmt.Errorf("pet %s: %w", petID, ErrNotFound)
	}
	vi, ok := s.pets[idx].findVaccination(vaccinationID)
	if !ok {
		return fmt.Errorf("vaccination %s: %w", vaccinationID, ErrNotFound)
	}
	if s.pets[idx].Vaccinations[vi].ReminderSent {
		return nil
	}

	if err := s.repo.MarkReminderSent(ctx, petID, vaccinationID); err != nil {
		return err
	}

	list := append([]vaccinations.Vaccination(nil), s.pets[idx].Vaccinations...)
	list[vi].ReminderSent = true
	s.pets[idx].Vaccinations = list
	return nil
}

// Snapshot devuelve una copia profunda del estado, tomada bajo lock.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Owners:  append([]Owner(nil), s.owners...),
		Pets:    make([]Pet, 0, len(s.pets)),
		TakenAt: s.now(),
	}
	for _, p := range s.pets {
		snap.Pets = append(snap.Pets, p.clone())
	}
	return snap
}

// IsEmpty indica si no hay dueños ni mascotas cargados.
func (s *Service) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.owners) == 0 && len(s.pets) == 0
}

// helpers (requieren lock tomado)

func (s *Service) ownerIndex(id string) (int, bool) {
	for i, o := range s.owners {
		if o.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Service) petIndex(id string) (int, bool) {
	for i, p := range s.pets {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}

func trimOwnerPatch(p OwnerPatch) OwnerPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return OwnerPatch{
		Name:    trim(p.Name),
		Phone:   trim(p.Phone),
		Email:   trim(p.Email),
		Address: trim(p.Address),
		Notes:   trim(p.Notes),
	}
}

// IsValidation, IsNotFound e IsUnavailable simplifican el mapeo en handlers.
func IsValidation(err error) bool  { return errors.Is(err, ErrInvalidInput) }
func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
