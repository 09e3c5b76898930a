package reminders

import (
	"context"
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
)

// Reminder es lo que recibe un Notifier: una vacunación ya resuelta contra su
// mascota y su dueño, con el mensaje armado.
type Reminder struct {
	VaccinationID string            `json:"vaccination_id"`
	Type          vaccinations.Type `json:"type"`
	DueDate       string            `json:"due_date"` // YYYY-MM-DD
	DaysUntil     int               `json:"days_until"`

	PetID   string         `json:"pet_id"`
	PetName string         `json:"pet_name"`
	Species clinic.Species `json:"species"`

	OwnerID    string `json:"owner_id"`
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone"`
	OwnerEmail string `json:"owner_email,omitempty"`

	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}

// Notifier entrega un recordatorio. nil = entregado; cualquier error = no
// entregado (se reintenta en el próximo scan).
type Notifier interface {
	Send(ctx context.Context, r Reminder) error
}

// NotifierFunc adapta una función a Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

func (f NotifierFunc) Send(ctx context.Context, r Reminder) error { return f(ctx, r) }

// Records es lo que el scanner necesita del registro de vacunaciones.
// *clinic.Service lo implementa.
type Records interface {
	Snapshot() clinic.Snapshot
	MarkReminderSent(ctx context.Context, petID, vaccinationID string) error
}

// Reloader refresca el snapshot desde el store. Con Locker configurado el
// scanner recarga bajo el lock: otro proceso pudo haber marcado o agregado
// vacunaciones desde la última carga. *clinic.Service lo implementa.
type Reloader interface {
	Load(ctx context.Context) error
}

// Locker evita que dos procesos que comparten store escaneen a la vez.
// ok=false significa que otro proceso tiene el lock.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// Outcome del intento de recordatorio.
// @Enum sent, failed, skipped
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Attempt es una entrada del log de intentos (append-only).
type Attempt struct {
	ID            string
	ScanID        string
	PetID         string
	VaccinationID string
	OwnerID       string

	Channel string
	Outcome Outcome
	Reason  string

	AttemptedAt time.Time
}

// Result resume un scan.
type Result struct {
	ScanID    string
	StartedAt time.Time
	Duration  time.Duration

	Selected int
	Sent     int
	Failed   int
	Skipped  int

	// Locked: otro proceso tenía el lock, no se hizo nada.
	Locked bool
}
