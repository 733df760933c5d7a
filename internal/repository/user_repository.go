package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NewUser carries the registration input for Create.
type NewUser struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber *string
	Identity    model.Identity
	IsAdmin     bool
}

const userColumns = `id, email, password_hash, full_name, phone_number, identity_kind, identity_value,
	is_admin, is_active, failed_login_attempts, locked_until, created_at, updated_at`

func scanUser(s rowScanner) (model.User, error) {
	var (
		u           model.User
		phone       sql.NullString
		kind, value string
		lockedUntil sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &phone, &kind, &value,
		&u.IsAdmin, &u.IsActive, &u.FailedLoginAttempts, &lockedUntil, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	id, err := model.ParseIdentity(model.IdentityKind(kind), value)
	if err != nil {
		return model.User{}, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.Identity = id
	u.PhoneNumber = strPtr(phone)
	u.LockedUntil = timePtr(lockedUntil)
	return u, nil
}

// Create hashes the password and inserts the user, returning its ID.
// Email and identity uniqueness are enforced by the schema.
func (r *UserRepo) Create(ctx context.Context, nu NewUser, cost int, now time.Time) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	hash, err := utils.HashPassword(nu.Password, cost)
	if err != nil {
		return 0, err
	}
	now = dbTime(now)
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users
		(email, password_hash, full_name, phone_number, identity_kind, identity_value,
		 is_admin, is_active, failed_login_attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, 0, ?, ?)`,
		email, hash, nu.FullName, nullString(nu.PhoneNumber),
		string(nu.Identity.Kind()), nu.Identity.Value(), nu.IsAdmin, now, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			// users has two unique keys; find out which one was hit.
			var n int
			if qerr := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n); qerr == nil && n > 0 {
				return 0, ErrEmailExists
			}
			return 0, ErrIdentityExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
	return u, notFound(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	return u, notFound(err)
}

// List pages through all users ordered by id.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile sets the member-editable fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName string, phone *string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET full_name = ?, phone_number = ?, updated_at = ? WHERE id = ?`,
		fullName, nullString(phone), dbTime(now), id)
	return rowOrNotFound(res, err)
}

// UpdatePassword stores an already hashed password.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, dbTime(now), id)
	return rowOrNotFound(res, err)
}

// UpdateEmail moves the account to a new, already verified address.
func (r *UserRepo) UpdateEmail(ctx context.Context, id uint64, email string, now time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET email = ?, updated_at = ? WHERE id = ?`, email, dbTime(now), id)
	if err != nil && database.IsUniqueViolation(err) {
		return ErrEmailExists
	}
	return rowOrNotFound(res, err)
}

// SetAdmin grants or revokes admin rights.
func (r *UserRepo) SetAdmin(ctx context.Context, id uint64, admin bool, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`, admin, dbTime(now), id)
	return rowOrNotFound(res, err)
}

// SetActive enables or disables login for the account.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, active, dbTime(now), id)
	return rowOrNotFound(res, err)
}

// RecordFailedLogin increments the failure counter and, once it reaches
// maxAttempts, locks the account until now+lockFor and resets the counter.
func (r *UserRepo) RecordFailedLogin(ctx context.Context, id uint64, maxAttempts int, lockFor time.Duration, now time.Time) error {
	now = dbTime(now)
	return database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var attempts int
		if err := tx.QueryRowContext(ctx, `SELECT failed_login_attempts FROM users WHERE id = ?`, id).Scan(&attempts); err != nil {
			return notFound(err)
		}
		attempts++
		if attempts >= maxAttempts {
			_, err := tx.ExecContext(ctx,
				`UPDATE users SET failed_login_attempts = 0, locked_until = ?, updated_at = ? WHERE id = ?`,
				now.Add(lockFor), now, id)
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE users SET failed_login_attempts = ?, updated_at = ? WHERE id = ?`,
			attempts, now, id)
		return err
	})
}

// ResetLoginFailures clears the failure counter and any lock.
func (r *UserRepo) ResetLoginFailures(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = 0, locked_until = NULL WHERE id = ? AND (failed_login_attempts <> 0 OR locked_until IS NOT NULL)`, id)
	return err
}

func rowOrNotFound(res sql.Result, err error) error {
	err = expectOneRow(res, err)
	if err == ErrNoChange {
		return ErrNotFound
	}
	return err
}
