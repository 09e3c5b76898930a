package sqlite

import (
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
)

// Formato de los documentos persistidos. Las fechas de vacunación van como
// YYYY-MM-DD.

type ownerDoc struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type petDoc struct {
	ID           string           `json:"id"`
	OwnerID      string           `json:"ownerId"`
	Name         string           `json:"name"`
	Species      string           `json:"species"`
	Breed        string           `json:"breed,omitempty"`
	Age          int              `json:"age"`
	Weight       *float64         `json:"weight,omitempty"`
	Vaccinations []vaccinationDoc `json:"vaccinations"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type vaccinationDoc struct {
	ID               string `json:"id"`
	PetID            string `json:"petId"`
	Type             string `json:"type"`
	DateAdministered string `json:"dateAdministered"`
	NextDueDate      string `json:"nextDueDate"`
	SelectedInterval string `json:"selectedInterval"`
	Notes            string `json:"notes,omitempty"`
	ReminderSent     bool   `json:"reminderSent"`
}

func toOwnerDoc(o clinic.Owner) ownerDoc {
	return ownerDoc{
		ID:        o.ID,
		Name:      o.Name,
		Phone:     o.Phone,
		Email:     o.Email,
		Address:   o.Address,
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt,
	}
}

func (d ownerDoc) owner() clinic.Owner {
	return clinic.Owner{
		ID:        d.ID,
		Name:      d.Name,
		Phone:     d.Phone,
		Email:     d.Email,
		Address:   d.Address,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
	}
}

func toPetDoc(p clinic.Pet) petDoc {
	d := petDoc{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Species:      string(p.Species),
		Breed:        p.Breed,
		Age:          p.Age,
		Weight:       p.Weight,
		Vaccinations: make([]vaccinationDoc, 0, len(p.Vaccinations)),
		CreatedAt:    p.CreatedAt,
	}
	for _, v := range p.Vaccinations {
		d.Vaccinations = append(d.Vaccinations, vaccinationDoc{
			ID:               v.ID,
			PetID:            v.PetID,
			Type:             string(v.Type),
			DateAdministered: vaccinations.FormatDate(v.DateAdministered),
			NextDueDate:      vaccinations.FormatDate(v.NextDueDate),
			SelectedInterval: v.SelectedInterval,
			Notes:            v.Notes,
			ReminderSent:     v.ReminderSent,
		})
	}
	return d
}

func (d petDoc) pet() (clinic.Pet, error) {
	p := clinic.Pet{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Name:         d.Name,
		Species:      clinic.Species(d.Species),
		Breed:        d.Breed,
		Age:          d.Age,
		Weight:       d.Weight,
		Vaccinations: make([]vaccinations.Vaccination, 0, len(d.Vaccinations)),
		CreatedAt:    d.CreatedAt,
	}
	for _, vd := range d.Vaccinations {
		administered, err := vaccinations.ParseDate(vd.DateAdministered)
		if err != nil {
			return clinic.Pet{}, err
		}
		due, err := vaccinations.ParseDate(vd.NextDueDate)
		if err != nil {
			return clinic.Pet{}, err
		}
		p.Vaccinations = append(p.Vaccinations, vaccinations.Vaccination{
			ID:               vd.ID,
			PetID:            vd.PetID,
			Type:             vaccinations.Type(vd.Type),
			DateAdministered: administered,
			NextDueDate:      due,
			SelectedInterval: vd.SelectedInterval,
			Notes:            vd.Notes,
			ReminderSent:     vd.ReminderSent,
		})
	}
	return p, nil
}
