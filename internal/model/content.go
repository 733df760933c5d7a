package model

import "time"

// Announcement is a news item written by an admin. Unpublished items
// are visible to admins only.
type Announcement struct {
	ID          uint64    // announcements.id
	Title       string    // announcements.title
	Content     string    // announcements.content
	AuthorID    uint64    // announcements.author_id
	IsPublished bool      // announcements.is_published
	CreatedAt   time.Time // announcements.created_at
	UpdatedAt   time.Time // announcements.updated_at
}

// PageContent is the editable body of a static page such as "about".
type PageContent struct {
	ID        uint64    // page_content.id
	PageName  string    // page_content.page_name
	Content   string    // page_content.content
	UpdatedBy *uint64   // page_content.updated_by (nullable)
	UpdatedAt time.Time // page_content.updated_at
}
