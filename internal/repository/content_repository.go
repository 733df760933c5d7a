package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/model"
)

// ContentRepo stores announcements and editable page bodies.
type ContentRepo struct{ db *sql.DB }

func NewContentRepo(db *sql.DB) *ContentRepo { return &ContentRepo{db: db} }

const announcementColumns = `id, title, content, author_id, is_published, created_at, updated_at`

func scanAnnouncement(s rowScanner) (model.Announcement, error) {
	var a model.Announcement
	err := s.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.IsPublished, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListAnnouncements returns announcements newest first. Unpublished ones
// are included only when includeDrafts is set.
func (r *ContentRepo) ListAnnouncements(ctx context.Context, includeDrafts bool, limit, offset int) ([]model.Announcement, error) {
	q := `SELECT ` + announcementColumns + ` FROM announcements`
	if !includeDrafts {
		q += ` WHERE is_published = 1`
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ContentRepo) GetAnnouncement(ctx context.Context, id uint64) (model.Announcement, error) {
	a, err := scanAnnouncement(r.db.QueryRowContext(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id))
	return a, notFound(err)
}

func (r *ContentRepo) CreateAnnouncement(ctx context.Context, a *model.Announcement, now time.Time) error {
	now = dbTime(now)
	res, err := r.db.ExecContext(ctx, `INSERT INTO announcements (title, content, author_id, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, a.Title, a.Content, a.AuthorID, a.IsPublished, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

func (r *ContentRepo) UpdateAnnouncement(ctx context.Context, a *model.Announcement, now time.Time) error {
	now = dbTime(now)
	res, err := r.db.ExecContext(ctx, `UPDATE announcements SET title = ?, content = ?, is_published = ?, updated_at = ? WHERE id = ?`,
		a.Title, a.Content, a.IsPublished, now, a.ID)
	if err := rowOrNotFound(res, err); err != nil {
		return err
	}
	a.UpdatedAt = now
	return nil
}

func (r *ContentRepo) DeleteAnnouncement(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	return rowOrNotFound(res, err)
}

// GetPage returns the content block stored under name.
func (r *ContentRepo) GetPage(ctx context.Context, name string) (model.PageContent, error) {
	var (
		p         model.PageContent
		updatedBy sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, page_name, content, updated_by, updated_at FROM page_content WHERE page_name = ?`, name).
		Scan(&p.ID, &p.PageName, &p.Content, &updatedBy, &p.UpdatedAt)
	if err != nil {
		return model.PageContent{}, notFound(err)
	}
	if updatedBy.Valid {
		v := uint64(updatedBy.Int64)
		p.UpdatedBy = &v
	}
	return p, nil
}

// UpsertPage creates the page block or replaces its content.
func (r *ContentRepo) UpsertPage(ctx context.Context, name, content string, by uint64, now time.Time) (model.PageContent, error) {
	now = dbTime(now)
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE page_content SET content = ?, updated_by = ?, updated_at = ? WHERE page_name = ?`,
			content, by, now, name)
		if err := expectOneRow(res, err); err != ErrNoChange {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO page_content (page_name, content, updated_by, updated_at) VALUES (?, ?, ?, ?)`,
			name, content, by, now)
		return err
	})
	if err != nil {
		return model.PageContent{}, err
	}
	return r.GetPage(ctx, name)
}
