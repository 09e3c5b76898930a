package vaccinations

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterval = errors.New("invalid interval")
)

// Interval es una entrada del catálogo: un offset fijo en días.
type Interval struct {
	ID    string
	Label string
	Days  int
}

// TypeConfig agrupa los intervalos permitidos para un tipo.
type TypeConfig struct {
	Type      Type
	Intervals []Interval
}

// catalog es estático y de solo lectura. El orden importa: el primer
// intervalo de cada tipo es el default que ofrece la UI.
var catalog = []TypeConfig{
	{
		Type: TypeAntiFleas,
		Intervals: []Interval{
			{ID: "antifleas-2m", Label: "2 Months", Days: 60},
			{ID: "antifleas-3m", Label: "3 Months", Days: 90},
		},
	},
	{
		Type: TypeDeworming,
		Intervals: []Interval{
			{ID: "deworming-2w", Label: "2 Weeks", Days: 14},
			{ID: "deworming-2m", Label: "2 Months", Days: 60},
		},
	},
	{
		Type: TypeViralVaccine,
		Intervals: []Interval{
			{ID: "viral-20d", Label: "20 Days", Days: 20},
			{ID: "viral-1y", Label: "1 Year", Days: 365},
		},
	},
	{
		Type: TypeRabies,
		Intervals: []Interval{
			{ID: "rabies-20d", Label: "20 Days", Days: 20},
			{ID: "rabies-1y", Label: "1 Year", Days: 365},
		},
	},
}

// Catalog devuelve una copia del catálogo completo.
func Catalog() []TypeConfig {
	out := make([]TypeConfig, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, TypeConfig{
			Type:      c.Type,
			Intervals: append([]Interval(nil), c.Intervals...),
		})
	}
	return out
}

// Types lista los tipos en el orden del catálogo.
func Types() []Type {
	out := make([]Type, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, c.Type)
	}
	return out
}

// IntervalsFor devuelve los intervalos del tipo.
// Un tipo fuera del catálogo es un bug del caller: entra validado (Type.Valid),
// así que acá fallamos fuerte.
func IntervalsFor(t Type) []Interval {
	for _, c := range catalog {
		if c.Type == t {
			return append([]Interval(nil), c.Intervals...)
		}
	}
	panic(fmt.Sprintf("vaccinations: unknown type %q", string(t)))
}

// FindInterval resuelve intervalID dentro del catálogo de t.
func FindInterval(t Type, intervalID string) (Interval, error) {
	if !t.Valid() {
		return Interval{}, fmt.Errorf("%w: unknown type %q", ErrInvalidInterval, string(t))
	}
	for _, in := range IntervalsFor(t) {
		if in.ID == intervalID {
			return in, nil
		}
	}
	return Interval{}, fmt.Errorf("%w: %q is not offered for %s", ErrInvalidInterval, intervalID, t)
}
