package vaccinations

import "time"

// Type define los tipos de vacunación/tratamiento soportados.
// @Enum Anti-fleas, Deworming, Viral vaccine, Rabies
type Type string

const (
	TypeAntiFleas    Type = "Anti-fleas"
	TypeDeworming    Type = "Deworming"
	TypeViralVaccine Type = "Viral vaccine"
	TypeRabies       Type = "Rabies"
)

// Valid indica si el tipo pertenece al catálogo.
func (t Type) Valid() bool {
	for _, c := range catalog {
		if c.Type == t {
			return true
		}
	}
	return false
}

// Vaccination es un evento de vacunación embebido en la mascota.
type Vaccination struct {
	ID    string
	PetID string

	Type Type

	// Fechas de calendario (00:00 UTC), ver Date.
	DateAdministered time.Time
	NextDueDate      time.Time

	// ID de la entrada del catálogo que produjo NextDueDate.
	SelectedInterval string

	Notes string

	// Solo pasa de false a true, y solo cuando el recordatorio se entregó.
	ReminderSent bool
}
