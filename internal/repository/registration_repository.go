package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/model"
)

// RegistrationRepo provides data access for the registrations table.
// Writes happen only inside the ledger transaction, so every write method
// takes the caller's *sql.Tx; the caller must commit or roll back.
type RegistrationRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewRegistrationRepo returns a new RegistrationRepo bound to db.
func NewRegistrationRepo(db *sql.DB, dialect database.Dialect) *RegistrationRepo {
	return &RegistrationRepo{db: db, dialect: dialect}
}

const registrationColumns = `id, user_id, event_id, registered_at, is_cancelled, cancelled_at`

func scanRegistration(s rowScanner) (model.Registration, error) {
	var (
		reg         model.Registration
		cancelledAt sql.NullTime
	)
	if err := s.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt, &reg.IsCancelled, &cancelledAt); err != nil {
		return model.Registration{}, err
	}
	reg.RegisteredAt = reg.RegisteredAt.UTC()
	reg.CancelledAt = timePtr(cancelledAt)
	return reg, nil
}

// CreateTx inserts an active registration and fills its ID. A violation
// of the active (user_id, event_id) index is reported as ErrDuplicate.
func (r *RegistrationRepo) CreateTx(ctx context.Context, tx *sql.Tx, reg *model.Registration) error {
	reg.RegisteredAt = dbTime(reg.RegisteredAt)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (user_id, event_id, registered_at, is_cancelled) VALUES (?, ?, ?, 0)`,
		reg.UserID, reg.EventID, reg.RegisteredAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	reg.IsCancelled = false
	reg.CancelledAt = nil
	return nil
}

// GetByID returns the registration without locking it.
func (r *RegistrationRepo) GetByID(ctx context.Context, id uint64) (model.Registration, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id)
	reg, err := scanRegistration(row)
	return reg, notFound(err)
}

// GetTx reads the registration inside tx without locking it.
func (r *RegistrationRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Registration, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id)
	reg, err := scanRegistration(row)
	return reg, notFound(err)
}

// GetForUpdateTx re-reads the registration inside tx under a row lock.
func (r *RegistrationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Registration, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`+r.dialect.LockClause(), id)
	reg, err := scanRegistration(row)
	return reg, notFound(err)
}

// ActiveExistsTx reports whether userID holds a non-cancelled
// registration for eventID.
func (r *RegistrationRepo) ActiveExistsTx(ctx context.Context, tx *sql.Tx, userID, eventID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE user_id = ? AND event_id = ? AND is_cancelled = 0`,
		userID, eventID).Scan(&n)
	return n > 0, err
}

// CountActiveTx counts non-cancelled registrations for eventID.
func (r *RegistrationRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, eventID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ? AND is_cancelled = 0`, eventID).Scan(&n)
	return n, err
}

// CancelTx flags an active registration as cancelled. ErrNoChange means
// it was already cancelled.
func (r *RegistrationRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE registrations SET is_cancelled = 1, cancelled_at = ? WHERE id = ? AND is_cancelled = 0`,
		dbTime(now), id)
	return expectOneRow(res, err)
}

// ListParticipants returns the active registrations for eventID joined
// with the member's name and email, in registration order.
func (r *RegistrationRepo) ListParticipants(ctx context.Context, eventID uint64) ([]model.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT r.id, r.user_id, u.full_name, u.email, r.registered_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ? AND r.is_cancelled = 0
		ORDER BY r.registered_at ASC, r.id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Participant, 0)
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.RegistrationID, &p.UserID, &p.FullName, &p.Email, &p.RegisteredAt); err != nil {
			return nil, err
		}
		p.RegisteredAt = p.RegisteredAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByUser returns the member's registrations newest first, joined
// with the event title, date and location.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID uint64, includeCancelled bool) ([]model.RegistrationDetail, error) {
	q := `SELECT r.id, r.user_id, r.event_id, r.registered_at, r.is_cancelled, r.cancelled_at,
			e.title, e.event_date, e.location
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = ?`
	if !includeCancelled {
		q += ` AND r.is_cancelled = 0`
	}
	q += ` ORDER BY r.registered_at DESC, r.id DESC`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.RegistrationDetail, 0)
	for rows.Next() {
		var (
			d           model.RegistrationDetail
			cancelledAt sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.EventID, &d.RegisteredAt, &d.IsCancelled, &cancelledAt,
			&d.EventTitle, &d.EventDate, &d.EventLocation); err != nil {
			return nil, err
		}
		d.RegisteredAt = d.RegisteredAt.UTC()
		d.EventDate = d.EventDate.UTC()
		d.CancelledAt = timePtr(cancelledAt)
		out = append(out, d)
	}
	return out, rows.Err()
}
