package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

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
		) VALUES (?,?,?,?,?,?,?,?,?)
	`,
		a.ID,
		a.ScanID,
		a.PetID,
		a.VaccinationID,
		a.OwnerID,
		a.Channel,
		string(a.Outcome),
		a.Reason,
		a.AttemptedAt.UnixNano(),
	)
	return unavailable("insert attempt", err)
}

func (r *AttemptsRepo) ListByPet(ctx context.Context, petID string, filter reminders.ListFilter) ([]reminders.Attempt, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return []reminders.Attempt{}, nil
	}

	where := []string{"pet_id = ?"}
	args := []any{petID}

	if len(filter.Outcomes) > 0 {
		ph := make([]string, 0, len(filter.Outcomes))
		for _, o := range filter.Outcomes {
			ph = append(ph, "?")
			args = append(args, string(o))
		}
		where = append(where, "outcome IN ("+strings.Join(ph, ",")+")")
	}
	if filter.VaccinationID != "" {
		where = append(where, "vaccination_id = ?")
		args = append(args, filter.VaccinationID)
	}
	if filter.From != nil {
		where = append(where, "attempted_at >= ?")
		args = append(args, filter.From.UnixNano())
	}
	if filter.To != nil {
		where = append(where, "attempted_at <= ?")
		args = append(args, filter.To.UnixNano())
	}
	args = append(args, filter.EffectiveLimit())

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, scan_id,
			pet_id, vaccination_id, owner_id,
			channel, outcome, reason,
			attempted_at
		FROM reminder_attempts
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY attempted_at DESC, id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, unavailable("select attempts", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]reminders.Attempt, 0)
	for rows.Next() {
		var a reminders.Attempt
		var outcome string
		var at int64
		if err := rows.Scan(
			&a.ID,
			&a.ScanID,
			&a.PetID,
			&a.VaccinationID,
			&a.OwnerID,
			&a.Channel,
			&outcome,
			&a.Reason,
			&at,
		); err != nil {
			return nil, unavailable("scan attempt", err)
		}
		a.Outcome = reminders.Outcome(outcome)
		a.AttemptedAt = time.Unix(0, at).UTC()
		out = append(out, a)
	}
	return out, unavailable("iterate attempts", rows.Err())
}
