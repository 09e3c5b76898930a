package clinic

import (
	"context"

	"pet-vaccination-tracker/internal/domain/vaccinations"
)

// Repository es el puerto hacia el store de documentos (owners y pets con
// vacunaciones embebidas). Implementaciones: memory, sqlite, postgres.
//
// Contrato de errores:
//   - ErrNotFound si el id no existe.
//   - ErrOwnerNotFound en AddPet si el dueño no existe.
//   - ErrDuplicatePet / ErrDuplicateOwner / ErrDuplicateVaccination si el id ya existe.
//   - ErrUnavailable (wrapeado) ante fallas de transporte.
//
// DeleteOwner borra en cascada las mascotas del dueño.
//
// Las vacunaciones se escriben de a una sobre el estado actual del store,
// nunca reemplazando la lista: varios procesos pueden compartir el store y
// MarkReminderSent no debe volver a false por una escritura con datos viejos.
type Repository interface {
	GetOwners(ctx context.Context) ([]Owner, error)
	GetPets(ctx context.Context) ([]Pet, error)

	AddOwner(ctx context.Context, o Owner) (string, error)
	UpdateOwner(ctx context.Context, id string, patch OwnerPatch) error
	DeleteOwner(ctx context.Context, id string) error

	AddPet(ctx context.Context, p Pet) (string, error)
	UpdatePet(ctx context.Context, id string, patch PetPatch) error
	DeletePet(ctx context.Context, id string) error

	AddVaccination(ctx context.Context, petID string, v vaccinations.Vaccination) error
	DeleteVaccination(ctx context.Context, petID, vaccinationID string) error
	// MarkReminderSent pone reminder_sent en true. Idempotente.
	MarkReminderSent(ctx context.Context, petID, vaccinationID string) error
}

// OwnerPatch: nil = no tocar.
type OwnerPatch struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
	Notes   *string
}

// Apply devuelve o con el patch aplicado.
func (p OwnerPatch) Apply(o Owner) Owner {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Phone != nil {
		o.Phone = *p.Phone
	}
	if p.Email != nil {
		o.Email = *p.Email
	}
	if p.Address != nil {
		o.Address = *p.Address
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	return o
}

// PetPatch: nil = no tocar. Las vacunaciones van por sus propios métodos.
type PetPatch struct {
	Name   *string
	Breed  *string
	Age    *int
	Weight *float64
}

// Apply devuelve p con el patch aplicado.
func (pp PetPatch) Apply(p Pet) Pet {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Breed != nil {
		p.Breed = *pp.Breed
	}
	if pp.Age != nil {
		p.Age = *pp.Age
	}
	if pp.Weight != nil {
		w := *pp.Weight
		p.Weight = &w
	}
	return p
}
