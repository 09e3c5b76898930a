package vaccinations

import (
	"strings"
	"time"
)

// DateLayout es el formato de fecha en la API y en los documentos persistidos.
const DateLayout = "2006-01-02"

// Date normaliza t a su fecha de calendario (00:00 UTC).
// Se toma año/mes/día en la zona de t, así "hoy a las 23:00 en -03" sigue siendo hoy.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parsea YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// FormatDate es el inverso de ParseDate.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Date(t).Format(DateLayout)
}

// NextDueDate calcula la próxima fecha: administered + días del intervalo.
// Suma de calendario (AddDate), no de segundos transcurridos.
func NextDueDate(administered time.Time, intervalID string, t Type) (time.Time, error) {
	in, err := FindInterval(t, intervalID)
	if err != nil {
		return time.Time{}, err
	}
	return Date(administered).AddDate(0, 0, in.Days), nil
}
