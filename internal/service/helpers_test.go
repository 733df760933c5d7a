package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/database/dbtest"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
)

var baseNow = time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx    context.Context
	users  *repository.UserRepo
	events *repository.EventRepo
	regs   *repository.RegistrationRepo
	ledger *RegistrationService
	admin  *EventService
	now    time.Time
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyRegistration(ctx context.Context, recipient string, summary EventSummary) error {
	return m.Called(ctx, recipient, summary).Error(0)
}

func newFixture(t *testing.T, n Notifier) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		ctx:    context.Background(),
		users:  repository.NewUserRepo(db),
		events: repository.NewEventRepo(db, database.SQLite),
		regs:   repository.NewRegistrationRepo(db, database.SQLite),
		now:    baseNow,
	}
	f.ledger = NewRegistrationService(db, f.events, f.regs, f.users, n, logger)
	f.ledger.now = func() time.Time { return f.now }
	f.admin = NewEventService(db, f.events, f.regs, logger)
	f.admin.now = func() time.Time { return f.now }
	t.Cleanup(f.ledger.Wait)
	return f
}

func (f *fixture) user(t *testing.T, n int) uint64 {
	t.Helper()
	id, err := f.users.Create(f.ctx, repository.NewUser{
		Email:    fmt.Sprintf("member%d@club.test", n),
		Password: "password123",
		FullName: fmt.Sprintf("Member %d", n),
		Identity: model.UniversityStudent{StudentID: fmt.Sprintf("%05d", n)},
	}, bcrypt.MinCost, f.now)
	require.NoError(t, err)
	return id
}

// event creates an active event starting in a week with the deadline a
// day before.
func (f *fixture) event(t *testing.T, capacity int) model.Event {
	t.Helper()
	return f.eventAt(t, capacity, f.now.Add(7*24*time.Hour), f.now.Add(6*24*time.Hour))
}

func (f *fixture) eventAt(t *testing.T, capacity int, date, deadline time.Time) model.Event {
	t.Helper()
	e := model.Event{
		Title:                "Go meetup",
		Description:          "talks and pizza",
		EventDate:            date,
		Location:             "Room 101",
		Capacity:             capacity,
		RegistrationDeadline: deadline,
	}
	require.NoError(t, f.events.Create(f.ctx, &e, f.now))
	return e
}

func (f *fixture) counter(t *testing.T, eventID uint64) int {
	t.Helper()
	e, err := f.events.GetByID(f.ctx, eventID)
	require.NoError(t, err)
	return e.CurrentRegistrations
}
