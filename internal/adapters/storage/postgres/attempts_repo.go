package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-vaccination-tracker/internal/domain/reminders"
)

type AttemptsRepo struct {
	db *sql.DB
}

func NewAttemptsRepo(db *sql.DB) *AttemptsRepo {
	return &AttemptsRepo{db: db}
}

var _ reminders.AttemptRepository = (*AttemptsRepo)(nil)

func (r *AttemptsRepo) Append(ctx context.Context, a reminders.Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_attempts (
			id, scan_id,
			pet_id, vaccination_id, owner_id,
			channel, outcome, reason,
			attempted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.ScanID,
		a.PetID,
		a.VaccinationID,
		a.OwnerID,
		a.Channel,
		string(a.Outcome),
		a.Reason,
		a.AttemptedAt,
	)
	return unavailable("insert attempt", err)
}

func (r *AttemptsRepo) ListByPet(ctx context.Context, petID string, filter reminders.ListFilter) ([]reminders.Attempt, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return []reminders.Attempt{}, nil
	}

	where := []string{"pet_id = $1"}
	args := []any{petID}
	argN := 2

	if len(filter.Outcomes) > 0 {
		ph := make([]string, 0, len(filter.Outcomes))
		for _, o := range filter.Outcomes {
			ph = append(ph, fmt.Sprintf("$%d", argN))
			args = append(args, string(o))
			argN++
		}
		where = append(where, "outcome IN ("+strings.Join(ph, ",")+")")
	}
	if filter.VaccinationID != "" {
		where = append(where, fmt.Sprintf("vaccination_id = $%d", argN))
		args = append(args, filter.VaccinationID)
		argN++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("attempted_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("attempted_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	q := `
		SELECT
			id, scan_id,
			pet_id, vaccination_id, owner_id,
			channel, outcome, reason,
			attempted_at
		FROM reminder_attempts
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY attempted_at DESC, id DESC
		LIMIT ` + fmt.Sprintf("$%d", argN)
	args = append(args, filter.EffectiveLimit())

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("select attempts", err)
	}
	defer rows.Close()

	out := make([]reminders.Attempt, 0)
	for rows.Next() {
		var a reminders.Attempt
		var outcome string
		if err := rows.Scan(
			&a.ID,
			&a.ScanID,
			&a.PetID,
			&a.VaccinationID,
			&a.OwnerID,
			&a.Channel,
			&outcome,
			&a.Reason,
			&a.AttemptedAt,
		); err != nil {
			return nil, unavailable("scan attempt", err)
		}
		a.Outcome = reminders.Outcome(outcome)
		out = append(out, a)
	}
	return out, unavailable("iterate attempts", rows.Err())
}
