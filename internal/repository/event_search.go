package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/club-events/internal/model"
)

// EventSearchQuery defines filters & pagination for searching active events.
type EventSearchQuery struct {
	Title    string
	Location string
	When     string // "upcoming" (default), "open" or "any"
	Now      time.Time
	Page     int
	PageSize int
}

// likeEscaper escapes LIKE wildcards with '!', which MySQL and SQLite
// both read literally inside a string.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in
// a lowercased column. Use with ESCAPE '!'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// Search returns one page of active events matching q plus the total
// number of matches. Text filters are case-insensitive substrings.
func (r *EventRepo) Search(ctx context.Context, q EventSearchQuery) ([]model.Event, int64, error) {
	where := []string{"is_active = 1"}
	args := []any{}
	now := dbTime(q.Now)

	switch strings.ToLower(q.When) {
	case "any":
	case "open":
		where = append(where, "registration_deadline > ?", "current_registrations < capacity")
		args = append(args, now)
	default:
		where = append(where, "event_date >= ?")
		args = append(args, now)
	}

	if q.Title != "" {
		where = append(where, `LOWER(title) LIKE ? ESCAPE '!'`)
		args = append(args, containsPattern(q.Title))
	}
	if q.Location != "" {
		where = append(where, `LOWER(location) LIKE ? ESCAPE '!'`)
		args = append(args, containsPattern(q.Location))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := max(q.Page, 1), q.PageSize
	if size < 1 {
		size = 20
	}
	dataArgs := append(append([]any{}, args...), size, (page-1)*size)
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events
		WHERE `+cond+`
		ORDER BY event_date ASC, id ASC
		LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Event, 0, size)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
