package vaccinations

import (
	"math"
	"time"
)

// Status es el estado de una vacunación relativo a "now".
type Status string

const (
	StatusOverdue  Status = "overdue"
	StatusDueSoon  Status = "due_soon"
	StatusUpcoming Status = "upcoming"
	StatusCurrent  Status = "current"
)

const (
	// DueSoonDays es el límite (inclusive) de "due soon".
	DueSoonDays = 3
	// UpcomingDays es el límite (inclusive) de "upcoming" en la vista de detalle.
	UpcomingDays = 30
)

// DaysUntil cuenta días de calendario entre now y due.
// Negativo si ya venció.
func DaysUntil(due, now time.Time) int {
	diff := Date(due).Sub(Date(now))
	return int(math.Ceil(diff.Hours() / 24))
}

// Classify es la clasificación de 4 estados (detalle de la mascota).
// No cachear: depende de now.
func Classify(due, now time.Time) Status {
	days := DaysUntil(due, now)
	switch {
	case days < 0:
		return StatusOverdue
	case days <= DueSoonDays:
		return StatusDueSoon
	case days <= UpcomingDays:
		return StatusUpcoming
	default:
		return StatusCurrent
	}
}

// ClassifyDashboard es la clasificación de 3 estados del dashboard general:
// todo lo que no es overdue ni due soon cae en upcoming.
func ClassifyDashboard(due, now time.Time) Status {
	s := Classify(due, now)
	if s == StatusCurrent {
		return StatusUpcoming
	}
	return s
}
