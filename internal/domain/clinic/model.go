package clinic

import (
	"time"

	"pet-vaccination-tracker/internal/domain/vaccinations"
)

// Species define las especies soportadas.
// @Enum Dog, Cat
type Species string

const (
	SpeciesDog Species = "Dog"
	SpeciesCat Species = "Cat"
)

var knownSpecies = []Species{SpeciesDog, SpeciesCat}

// Valid indica si la especie es conocida. Para sumar una especie alcanza con
// agregarla a knownSpecies.
func (s Species) Valid() bool {
	for _, k := range knownSpecies {
		if k == s {
			return true
		}
	}
	return false
}

// Owner es el dueño/contacto de una o más mascotas.
type Owner struct {
	ID string

	Name  string
	Phone string

	Email   string // opcional, usado para recordatorios
	Address string // opcional
	Notes   string

	CreatedAt time.Time
}

// Pet representa una mascota con sus vacunaciones embebidas.
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species Species
	Breed   string
	Age     int
	Weight  *float64

	// Composición: las vacunaciones no sobreviven a la mascota.
	Vaccinations []vaccinations.Vaccination

	CreatedAt time.Time
}

func (p Pet) clone() Pet {
	out := p
	if p.Weight != nil {
		w := *p.Weight
		out.Weight = &w
	}
	out.Vaccinations = append([]vaccinations.Vaccination(nil), p.Vaccinations...)
	return out
}

func (p Pet) findVaccination(id string) (int, bool) {
	for i, v := range p.Vaccinations {
		if v.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Snapshot es una copia profunda y consistente del estado en memoria.
type Snapshot struct {
	Owners  []Owner
	Pets    []Pet
	TakenAt time.Time
}

// Owner busca un dueño dentro del snapshot.
func (s Snapshot) Owner(id string) (Owner, bool) {
	for _, o := range s.Owners {
		if o.ID == id {
			return o, true
		}
	}
	return Owner{}, false
}
