package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
)

const (
	collOwners = "owners"
	collPets   = "pets"
)

type ClinicRepo struct {
	db *sql.DB
}

func NewClinicRepo(db *sql.DB) *ClinicRepo {
	return &ClinicRepo{db: db}
}

var _ clinic.Repository = (*ClinicRepo)(nil)

func (r *ClinicRepo) GetOwners(ctx context.Context) ([]clinic.Owner, error) {
	payloads, err := r.list(ctx, collOwners)
	if err != nil {
		return nil, err
	}
	out := make([]clinic.Owner, 0, len(payloads))
	for _, b := range payloads {
		var d ownerDoc
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode owner: %w", err)
		}
		out = append(out, d.owner())
	}
	return out, nil
}

func (r *ClinicRepo) GetPets(ctx context.Context) ([]clinic.Pet, error) {
	payloads, err := r.list(ctx, collPets)
	if err != nil {
		return nil, err
	}
	out := make([]clinic.Pet, 0, len(payloads))
	for _, b := range payloads {
		var d petDoc
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode pet: %w", err)
		}
		p, err := d.pet()
		if err != nil {
			return nil, fmt.Errorf("decode pet %s: %w", d.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ClinicRepo) AddOwner(ctx context.Context, o clinic.Owner) (string, error) {
	if strings.TrimSpace(o.ID) == "" {
		return "", errors.New("owner id required")
	}
	payload, err := json.Marshal(toOwnerDoc(o))
	if err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := docExists(ctx, tx, collOwners, o.ID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", clinic.ErrDuplicateOwner
	}
	if err := insertDoc(ctx, tx, collOwners, o.ID, "", payload, o.CreatedAt.UnixNano()); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", unavailable("commit", err)
	}
	return o.ID, nil
}

func (r *ClinicRepo) UpdateOwner(ctx context.Context, id string, patch clinic.OwnerPatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var d ownerDoc
	if err := getDoc(ctx, tx, collOwners, id, &d); err != nil {
		return err
	}
	payload, err := json.Marshal(toOwnerDoc(patch.Apply(d.owner())))
	if err != nil {
		return err
	}
	if err := updateDoc(ctx, tx, collOwners, id, payload); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

// DeleteOwner borra el dueño y sus mascotas en la misma transacción.
func (r *ClinicRepo) DeleteOwner(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collOwners, id)
	if err != nil {
		return unavailable("delete owner", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND owner_id = ?`, collPets, id); err != nil {
		return unavailable("delete owner pets", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func (r *ClinicRepo) AddPet(ctx context.Context, p clinic.Pet) (string, error) {
	if strings.TrimSpace(p.ID) == "" {
		return "", errors.New("pet id required")
	}
	payload, err := json.Marshal(toPetDoc(p))
	if err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	ownerOK, err := docExists(ctx, tx, collOwners, p.OwnerID)
	if err != nil {
		return "", err
	}
	if !ownerOK {
		return "", clinic.ErrOwnerNotFound
	}
	dup, err := docExists(ctx, tx, collPets, p.ID)
	if err != nil {
		return "", err
	}
	if dup {
		return "", clinic.ErrDuplicatePet
	}
	if err := insertDoc(ctx, tx, collPets, p.ID, p.OwnerID, payload, p.CreatedAt.UnixNano()); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", unavailable("commit", err)
	}
	return p.ID, nil
}

func (r *ClinicRepo) UpdatePet(ctx context.Context, id string, patch clinic.PetPatch) error {
	return r.mutatePet(ctx, id, func(p *clinic.Pet) error {
		*p = patch.Apply(*p)
		return nil
	})
}

func (r *ClinicRepo) DeletePet(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collPets, id)
	if err != nil {
		return unavailable("delete pet", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clinic.ErrNotFound
	}
	return nil
}

func (r *ClinicRepo) AddVaccination(ctx context.Context, petID string, v vaccinations.Vaccination) error {
	return r.mutatePet(ctx, petID, func(p *clinic.Pet) error {
		if _, dup := vaccinationIndex(*p, v.ID); dup {
			return clinic.ErrDuplicateVaccination
		}
		p.Vaccinations = append(p.Vaccinations, v)
		return nil
	})
}

func (r *ClinicRepo) DeleteVaccination(ctx context.Context, petID, vaccinationID string) error {
	return r.mutatePet(ctx, petID, func(p *clinic.Pet) error {
		i, ok := vaccinationIndex(*p, vaccinationID)
		if !ok {
			return clinic.ErrNotFound
		}
		p.Vaccinations = append(p.Vaccinations[:i], p.Vaccinations[i+1:]...)
		return nil
	})
}

func (r *ClinicRepo) MarkReminderSent(ctx context.Context, petID, vaccinationID string) error {
	return r.mutatePet(ctx, petID, func(p *clinic.Pet) error {
		i, ok := vaccinationIndex(*p, vaccinationID)
		if !ok {
			return clinic.ErrNotFound
		}
		p.Vaccinations[i].ReminderSent = true
		return nil
	})
}

// mutatePet lee el documento actual, aplica fn y lo reescribe en una sola
// transacción. fn trabaja siempre sobre lo que hay en el store.
func (r *ClinicRepo) mutatePet(ctx context.Context, id string, fn func(p *clinic.Pet) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var d petDoc
	if err := getDoc(ctx, tx, collPets, id, &d); err != nil {
		return err
	}
	p, err := d.pet()
	if err != nil {
		return fmt.Errorf("decode pet %s: %w", id, err)
	}
	if err := fn(&p); err != nil {
		return err
	}
	payload, err := json.Marshal(toPetDoc(p))
	if err != nil {
		return err
	}
	if err := updateDoc(ctx, tx, collPets, id, payload); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func vaccinationIndex(p clinic.Pet, id string) (int, bool) {
	for i, v := range p.Vaccinations {
		if v.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (r *ClinicRepo) list(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload FROM documents
		WHERE collection = ?
		ORDER BY created_at ASC, id ASC
	`, collection)
	if err != nil {
		return nil, unavailable("select "+collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out [][]byte
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, unavailable("scan "+collection, err)
		}
		out = append(out, b)
	}
	return out, unavailable("iterate "+collection, rows.Err())
}

func docExists(ctx context.Context, tx *sql.Tx, collection, id string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("select "+collection, err)
	}
	return true, nil
}

func getDoc(ctx context.Context, tx *sql.Tx, collection, id string, dst any) error {
	var b []byte
	err := tx.QueryRowContext(ctx, `SELECT payload FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return clinic.ErrNotFound
	}
	if err != nil {
		return unavailable("select "+collection, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s %s: %w", collection, id, err)
	}
	return nil
}

func insertDoc(ctx context.Context, tx *sql.Tx, collection, id, ownerID string, payload []byte, createdAt int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, owner_id, payload, created_at)
		VALUES (?,?,?,?,?)
	`, collection, id, ownerID, payload, createdAt)
	return unavailable("insert "+collection, err)
}

func updateDoc(ctx context.Context, tx *sql.Tx, collection, id string, payload []byte) error {
	_, err := tx.ExecContext(ctx, `UPDATE documents SET payload = ? WHERE collection = ? AND id = ?`, payload, collection, id)
	return unavailable("update "+collection, err)
}
