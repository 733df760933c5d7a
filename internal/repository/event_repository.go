package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/model"
)

// EventRepo provides data access for the events table. The
// current_registrations column is only changed through the guarded
// Increment/Decrement methods inside the registration transaction.
type EventRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewEventRepo returns a new EventRepo bound to db.
func NewEventRepo(db *sql.DB, dialect database.Dialect) *EventRepo {
	return &EventRepo{db: db, dialect: dialect}
}

const eventColumns = `id, title, description, event_date, event_time, location, capacity,
	current_registrations, registration_deadline, image_url, is_active, created_at, updated_at`

func scanEvent(s rowScanner) (model.Event, error) {
	var (
		e         model.Event
		eventTime sql.NullString
		imageURL  sql.NullString
	)
	err := s.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &eventTime, &e.Location,
		&e.Capacity, &e.CurrentRegistrations, &e.RegistrationDeadline, &imageURL,
		&e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.Event{}, err
	}
	e.EventTime = strPtr(eventTime)
	e.ImageURL = strPtr(imageURL)
	e.EventDate = e.EventDate.UTC()
	e.RegistrationDeadline = e.RegistrationDeadline.UTC()
	return e, nil
}

// Create inserts e with a zero registration counter and fills its ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event, now time.Time) error {
	now = dbTime(now)
	res, err := r.db.ExecContext(ctx, `INSERT INTO events
		(title, description, event_date, event_time, location, capacity, current_registrations,
		 registration_deadline, image_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, 1, ?, ?)`,
		e.Title, e.Description, dbTime(e.EventDate), nullString(e.EventTime), e.Location, e.Capacity,
		dbTime(e.RegistrationDeadline), nullString(e.ImageURL), now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.CurrentRegistrations = 0
	e.IsActive = true
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

// GetByID returns the event without locking it.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	return e, notFound(err)
}

// GetForUpdateTx reads the event inside tx and holds its row lock until
// the transaction ends.
func (r *EventRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Event, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`+r.dialect.LockClause(), id)
	e, err := scanEvent(row)
	return e, notFound(err)
}

// List returns one page of events matching f, ordered by date, plus the
// number of matches across all pages.
func (r *EventRepo) List(ctx context.Context, f model.EventFilter) ([]model.Event, int64, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeInactive {
		where = append(where, "is_active = 1")
	}
	if !f.IncludePast {
		where = append(where, "event_date >= ?")
		args = append(args, dbTime(f.From))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + eventColumns + ` FROM events` + cond + " ORDER BY event_date ASC, id ASC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, max(f.Offset, 0))
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// UpdateTx writes the editable columns of e, including is_active. The
// registration counter is left untouched.
func (r *EventRepo) UpdateTx(ctx context.Context, tx *sql.Tx, e *model.Event, now time.Time) error {
	now = dbTime(now)
	_, err := tx.ExecContext(ctx, `UPDATE events SET
		title = ?, description = ?, event_date = ?, event_time = ?, location = ?, capacity = ?,
		registration_deadline = ?, image_url = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Description, dbTime(e.EventDate), nullString(e.EventTime), e.Location, e.Capacity,
		dbTime(e.RegistrationDeadline), nullString(e.ImageURL), e.IsActive, now, e.ID)
	if err != nil {
		return err
	}
	e.UpdatedAt = now
	return nil
}

// IncrementRegistrationsTx adds one to the counter only while it is below
// capacity. ErrNoChange means the event is full.
func (r *EventRepo) IncrementRegistrationsTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE events
		SET current_registrations = current_registrations + 1, updated_at = ?
		WHERE id = ? AND current_registrations < capacity`, dbTime(now), id)
	return expectOneRow(res, err)
}

// DecrementRegistrationsTx subtracts one from the counter. ErrNoChange
// means the counter was already zero.
func (r *EventRepo) DecrementRegistrationsTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE events
		SET current_registrations = current_registrations - 1, updated_at = ?
		WHERE id = ? AND current_registrations > 0`, dbTime(now), id)
	return expectOneRow(res, err)
}

// DeactivateTx soft-deletes the event.
func (r *EventRepo) DeactivateTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE events SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`,
		dbTime(now), id)
	return expectOneRow(res, err)
}

func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoChange
	}
	return nil
}
