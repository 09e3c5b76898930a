package reminders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"

	"github.com/stretchr/testify/mock"
)

// fakeRecords implementa Records sobre un snapshot mutable.
type fakeRecords struct {
	mu      sync.Mutex
	snap    clinic.Snapshot
	marks   []string
	markErr map[string]error
}

func (f *fakeRecords) Snapshot() clinic.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := clinic.Snapshot{Owners: append([]clinic.Owner(nil), f.snap.Owners...)}
	for _, p := range f.snap.Pets {
		cp := p
		cp.Vaccinations = append([]vaccinations.Vaccination(nil), p.Vaccinations...)
		out.Pets = append(out.Pets, cp)
	}
	return out
}

func (f *fakeRecords) MarkReminderSent(ctx context.Context, petID, vaccinationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// como un store real: con ctx cancelado no escribe
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := f.markErr[vaccinationID]; err != nil {
		return err
	}
	for i := range f.snap.Pets {
		if f.snap.Pets[i].ID != petID {
			continue
		}
		for j := range f.snap.Pets[i].Vaccinations {
			if f.snap.Pets[i].Vaccinations[j].ID == vaccinationID {
				f.snap.Pets[i].Vaccinations[j].ReminderSent = true
				f.marks = append(f.marks, vaccinationID)
				return nil
			}
		}
	}
	return fmt.Errorf("vaccination %s: %w", vaccinationID, clinic.ErrNotFound)
}

// add agrega una vacunación a una mascota existente (escritura concurrente
// durante un scan).
func (f *fakeRecords) add(petID string, v vaccinations.Vaccination) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.snap.Pets {
		if f.snap.Pets[i].ID == petID {
			f.snap.Pets[i].Vaccinations = append(f.snap.Pets[i].Vaccinations, v)
			return
		}
	}
}

// reloadingRecords simula un store compartido: Load trae lo que otro proceso
// escribió desde la última carga.
type reloadingRecords struct {
	*fakeRecords
	loads   int
	loadErr error
	onLoad  func(f *fakeRecords)
}

func (r *reloadingRecords) Load(_ context.Context) error {
	r.loads++
	if r.loadErr != nil {
		return r.loadErr
	}
	if r.onLoad != nil {
		r.mu.Lock()
		r.onLoad(r.fakeRecords)
		r.mu.Unlock()
	}
	return nil
}

func (f *fakeRecords) sent(vaccinationID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.snap.Pets {
		for _, v := range p.Vaccinations {
			if v.ID == vaccinationID {
				return v.ReminderSent
			}
		}
	}
	return false
}

// mockNotifier es un Notifier con testify/mock.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, r Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// fakeAttempts es un AttemptRepository en memoria.
type fakeAttempts struct {
	mu   sync.Mutex
	list []Attempt
}

func (f *fakeAttempts) Append(_ context.Context, a Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, a)
	return nil
}

func (f *fakeAttempts) ListByPet(_ context.Context, petID string, filter ListFilter) ([]Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Attempt, 0)
	for _, a := range f.list {
		if a.PetID == petID && filter.Matches(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttemptedAt.After(out[j].AttemptedAt) })
	if n := filter.EffectiveLimit(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeAttempts) byOutcome(o Outcome) []Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Attempt, 0)
	for _, a := range f.list {
		if a.Outcome == o {
			out = append(out, a)
		}
	}
	return out
}

// fakeLocker devuelve siempre el mismo resultado.
type fakeLocker struct {
	ok       bool
	err      error
	unlocked int
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, bool, error) {
	if l.err != nil || !l.ok {
		return nil, l.ok, l.err
	}
	return func(context.Context) error {
		l.unlocked++
		return nil
	}, true, nil
}

func date(s string) time.Time {
	d, err := vaccinations.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func vax(id, petID string, due string, sent bool) vaccinations.Vaccination {
	return vaccinations.Vaccination{
		ID:               id,
		PetID:            petID,
		Type:             vaccinations.TypeRabies,
		DateAdministered: date(due).AddDate(0, 0, -20),
		NextDueDate:      date(due),
		SelectedInterval: "rabies-20d",
		ReminderSent:     sent,
	}
}
