package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
)

type ClinicRepo struct {
	db *sql.DB
}

func NewClinicRepo(db *sql.DB) *ClinicRepo {
	return &ClinicRepo{db: db}
}

var _ clinic.Repository = (*ClinicRepo)(nil)

func (r *ClinicRepo) GetOwners(ctx context.Context) ([]clinic.Owner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, email, address, notes, created_at
		FROM owners
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, unavailable("select owners", err)
	}
	defer rows.Close()

	out := make([]clinic.Owner, 0)
	for rows.Next() {
		var o clinic.Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Phone, &o.Email, &o.Address, &o.Notes, &o.CreatedAt); err != nil {
			return nil, unavailable("scan owner", err)
		}
		out = append(out, o)
	}
	return out, unavailable("iterate owners", rows.Err())
}

func (r *ClinicRepo) GetPets(ctx context.Context) ([]clinic.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, species, breed, age, weight, created_at
		FROM pets
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, unavailable("select pets", err)
	}
	defer rows.Close()

	out := make([]clinic.Pet, 0)
	index := map[string]int{}
	for rows.Next() {
		var p clinic.Pet
		var species string
		var weight sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &species, &p.Breed, &p.Age, &weight, &p.CreatedAt); err != nil {
			return nil, unavailable("scan pet", err)
		}
		p.Species = clinic.Species(species)
		if weight.Valid {
			w := weight.Float64
			p.Weight = &w
		}
		p.Vaccinations = []vaccinations.Vaccination{}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate pets", err)
	}

	vrows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, type, date_administered, next_due_date, selected_interval, notes, reminder_sent
		FROM vaccinations
		ORDER BY pet_id, position ASC
	`)
	if err != nil {
		return nil, unavailable("select vaccinations", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var v vaccinations.Vaccination
		var typ string
		if err := vrows.Scan(&v.ID, &v.PetID, &typ, &v.DateAdministered, &v.NextDueDate, &v.SelectedInterval, &v.Notes, &v.ReminderSent); err != nil {
			return nil, unavailable("scan vaccination", err)
		}
		v.Type = vaccinations.Type(typ)
		// date se mapea a time.Time midnight UTC; normalizamos por las dudas
		v.DateAdministered = vaccinations.Date(v.DateAdministered)
		v.NextDueDate = vaccinations.Date(v.NextDueDate)

		if i, ok := index[v.PetID]; ok {
			out[i].Vaccinations = append(out[i].Vaccinations, v)
		}
	}
	return out, unavailable("iterate vaccinations", vrows.Err())
}

func (r *ClinicRepo) AddOwner(ctx context.Context, o clinic.Owner) (string, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (id, name, phone, email, address, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, o.ID, o.Name, o.Phone, o.Email, o.Address, o.Notes, o.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return "", clinic.ErrDuplicateOwner
		}
		return "", unavailable("insert owner", err)
	}
	return o.ID, nil
}

func (r *ClinicRepo) UpdateOwner(ctx context.Context, id string, patch clinic.OwnerPatch) error {
	sets := make([]string, 0, 5)
	args := []any{id}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("name", patch.Name)
	add("phone", patch.Phone)
	add("email", patch.Email)
	add("address", patch.Address)
	add("notes", patch.Notes)

	if len(sets) == 0 {
		return r.ownerExists(ctx, id)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE owners SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return unavailable("update owner", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

// DeleteOwner borra el dueño; pets y vaccinations caen por ON DELETE CASCADE.
func (r *ClinicRepo) DeleteOwner(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id)
	if err != nil {
		return unavailable("delete owner", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

func (r *ClinicRepo) AddPet(ctx context.Context, p clinic.Pet) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pets (id, owner_id, name, species, breed, age, weight, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.ID, p.OwnerID, p.Name, string(p.Species), p.Breed, p.Age, toNullFloat(p.Weight), p.CreatedAt)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return "", clinic.ErrDuplicatePet
		case pgForeignKeyViolation:
			return "", clinic.ErrOwnerNotFound
		}
		return "", unavailable("insert pet", err)
	}

	if err := insertVaccinations(ctx, tx, p.ID, p.Vaccinations); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", unavailable("commit", err)
	}
	return p.ID, nil
}

func (r *ClinicRepo) UpdatePet(ctx context.Context, id string, patch clinic.PetPatch) error {
	sets := make([]string, 0, 4)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Breed != nil {
		add("breed", *patch.Breed)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.Weight != nil {
		add("weight", *patch.Weight)
	}

	if len(sets) == 0 {
		return r.petExists(ctx, id)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE pets SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return unavailable("update pet", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

func (r *ClinicRepo) DeletePet(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return unavailable("delete pet", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

// AddVaccination agrega una vacunación al final de la lista de la mascota.
func (r *ClinicRepo) AddVaccination(ctx context.Context, petID string, v vaccinations.Vaccination) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccinations (
			id, pet_id, position,
			type, date_administered, next_due_date,
			selected_interval, notes, reminder_sent
		)
		SELECT $1::text, $2::text, COALESCE(MAX(position) + 1, 0), $3::text, $4::date, $5::date, $6::text, $7::text, $8::boolean
		FROM vaccinations WHERE pet_id = $2::text
	`,
		v.ID,
		petID,
		string(v.Type),
		v.DateAdministered,
		v.NextDueDate,
		v.SelectedInterval,
		v.Notes,
		v.ReminderSent,
	)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return clinic.ErrDuplicateVaccination
		case pgForeignKeyViolation:
			return clinic.ErrNotFound
		}
		return unavailable("insert vaccination", err)
	}
	return nil
}

func (r *ClinicRepo) DeleteVaccination(ctx context.Context, petID, vaccinationID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vaccinations WHERE pet_id = $1 AND id = $2`, petID, vaccinationID)
	if err != nil {
		return unavailable("delete vaccination", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

// MarkReminderSent sólo toca la columna del flag; nunca la pasa a false.
func (r *ClinicRepo) MarkReminderSent(ctx context.Context, petID, vaccinationID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccinations SET reminder_sent = TRUE
		WHERE pet_id = $1 AND id = $2
	`, petID, vaccinationID)
	if err != nil {
		return unavailable("mark reminder sent", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

func (r *ClinicRepo) petExists(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM pets WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return clinic.ErrNotFound
	}
	return unavailable("select pet", err)
}

func (r *ClinicRepo) ownerExists(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM owners WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return clinic.ErrNotFound
	}
	return unavailable("select owner", err)
}

func insertVaccinations(ctx context.Context, tx *sql.Tx, petID string, list []vaccinations.Vaccination) error {
	for i, v := range list {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vaccinations (
				id, pet_id, position,
				type, date_administered, next_due_date,
				selected_interval, notes, reminder_sent
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			v.ID,
			petID,
			i,
			string(v.Type),
			v.DateAdministered,
			v.NextDueDate,
			v.SelectedInterval,
			v.Notes,
			v.ReminderSent,
		)
		if err != nil {
			return unavailable("insert vaccination", err)
		}
	}
	return nil
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
