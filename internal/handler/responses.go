package handler

import (
	"time"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/service"
)

type userResp struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PhoneNumber  *string   `json:"phone_number"`
	IdentityKind string    `json:"identity_kind"`
	StudentID    string    `json:"student_id,omitempty"`
	NationalID   string    `json:"national_id,omitempty"`
	Role         string    `json:"role"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func newUserResp(u model.User) userResp {
	r := userResp{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role(),
		IsAdmin:     u.IsAdmin,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
	switch id := u.Identity.(type) {
	case model.UniversityStudent:
		r.IdentityKind, r.StudentID = string(id.Kind()), id.StudentID
	case model.ExternalUser:
		r.IdentityKind, r.NationalID = string(id.Kind()), id.NationalID
	}
	return r
}

type eventResp struct {
	ID                   uint64    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	EventDate            time.Time `json:"event_date"`
	EventTime            *string   `json:"event_time"`
	Location             string    `json:"location"`
	Capacity             int       `json:"capacity"`
	CurrentRegistrations int       `json:"current_registrations"`
	AvailableSpots       int       `json:"available_spots"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	ImageURL             *string   `json:"image_url"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func newEventResp(e model.Event) eventResp {
	return eventResp{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		EventDate:            e.EventDate,
		EventTime:            e.EventTime,
		Location:             e.Location,
		Capacity:             e.Capacity,
		CurrentRegistrations: e.CurrentRegistrations,
		AvailableSpots:       e.AvailableSpots(),
		RegistrationDeadline: e.RegistrationDeadline,
		ImageURL:             e.ImageURL,
		IsActive:             e.IsActive,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

type availabilityResp struct {
	EventID              uint64 `json:"event_id"`
	Capacity             int    `json:"capacity"`
	CurrentRegistrations int    `json:"current_registrations"`
	AvailableSpots       int    `json:"available_spots"`
	IsFull               bool   `json:"is_full"`
	RegistrationOpen     bool   `json:"registration_open"`
}

func newAvailabilityResp(a service.Availability) availabilityResp {
	return availabilityResp(a)
}

type registrationResp struct {
	ID            uint64     `json:"id"`
	UserID        uint64     `json:"user_id"`
	EventID       uint64     `json:"event_id"`
	RegisteredAt  time.Time  `json:"registered_at"`
	IsCancelled   bool       `json:"is_cancelled"`
	CancelledAt   *time.Time `json:"cancelled_at"`
	EventTitle    string     `json:"event_title,omitempty"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	EventLocation string     `json:"event_location,omitempty"`
}

func newRegistrationResp(r model.Registration) registrationResp {
	return registrationResp{
		ID:           r.ID,
		UserID:       r.UserID,
		EventID:      r.EventID,
		RegisteredAt: r.RegisteredAt,
		IsCancelled:  r.IsCancelled,
		CancelledAt:  r.CancelledAt,
	}
}

func newRegistrationDetailResp(d model.RegistrationDetail) registrationResp {
	r := newRegistrationResp(d.Registration)
	r.EventTitle = d.EventTitle
	date := d.EventDate
	r.EventDate = &date
	r.EventLocation = d.EventLocation
	return r
}

type participantResp struct {
	RegistrationID uint64    `json:"registration_id"`
	UserID         uint64    `json:"user_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	RegisteredAt   time.Time `json:"registered_at"`
}

type announcementResp struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	AuthorID    uint64    `json:"author_id"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newAnnouncementResp(a model.Announcement) announcementResp {
	return announcementResp(a)
}

type pageResp struct {
	PageName  string    `json:"page_name"`
	Content   string    `json:"content"`
	UpdatedBy *uint64   `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}
