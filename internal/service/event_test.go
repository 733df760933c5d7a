package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
)

func validInput(now time.Time) EventInput {
	return EventInput{
		Title:                "Hack night",
		Description:          "bring a laptop",
		EventDate:            now.Add(10 * 24 * time.Hour),
		Location:             "Lab 3",
		Capacity:             20,
		RegistrationDeadline: now.Add(9 * 24 * time.Hour),
	}
}

func TestEventService_CreateValidates(t *testing.T) {
	f := newFixture(t, nil)

	cases := map[string]func(*EventInput){
		"no title":         func(in *EventInput) { in.Title = " " },
		"zero capacity":    func(in *EventInput) { in.Capacity = 0 },
		"deadline after":   func(in *EventInput) { in.RegistrationDeadline = in.EventDate.Add(time.Minute) },
		"deadline equal":   func(in *EventInput) { in.RegistrationDeadline = in.EventDate },
		"missing location": func(in *EventInput) { in.Location = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput(f.now)
			mutate(&in)
			_, err := f.admin.Create(f.ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	e, err := f.admin.Create(f.ctx, validInput(f.now))
	require.NoError(t, err)
	assert.True(t, e.IsActive)
	assert.Zero(t, e.CurrentRegistrations)
	assert.Equal(t, 20, e.Capacity)
}

func ptr[T any](v T) *T { return &v }

func TestEventService_UpdateCapacityFloor(t *testing.T) {
	f := newFixture(t, nil)
	e, err := f.admin.Create(f.ctx, validInput(f.now))
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := f.ledger.Register(f.ctx, e.ID, f.user(t, i))
		require.NoError(t, err)
	}

	_, err = f.admin.Update(f.ctx, e.ID, EventPatch{Capacity: ptr(2)})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := f.admin.Update(f.ctx, e.ID, EventPatch{Capacity: ptr(3), Title: ptr("Hack night II")})
	require.NoError(t, err)
	assert.Equal(t, "Hack night II", got.Title)
	assert.Equal(t, 3, got.Capacity)
	assert.Equal(t, 3, got.CurrentRegistrations)

	_, err = f.admin.Update(f.ctx, 9999, EventPatch{Capacity: ptr(3)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventService_UpdateIsPartial(t *testing.T) {
	f := newFixture(t, nil)
	in := validInput(f.now)
	in.EventTime = ptr("18:00")
	e, err := f.admin.Create(f.ctx, in)
	require.NoError(t, err)

	got, err := f.admin.Update(f.ctx, e.ID, EventPatch{Location: ptr("Lab 4")})
	require.NoError(t, err)
	assert.Equal(t, "Lab 4", got.Location)
	assert.Equal(t, "Hack night", got.Title)
	assert.Equal(t, "bring a laptop", got.Description)
	assert.Equal(t, 20, got.Capacity)
	require.NotNil(t, got.EventTime)
	assert.Equal(t, "18:00", *got.EventTime)
	assert.True(t, got.EventDate.Equal(e.EventDate))

	// the merged event is validated, not just the changed fields
	_, err = f.admin.Update(f.ctx, e.ID, EventPatch{RegistrationDeadline: ptr(e.EventDate.Add(time.Hour))})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.admin.Update(f.ctx, e.ID, EventPatch{Title: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEventService_UpdateReactivates(t *testing.T) {
	f := newFixture(t, nil)
	e, err := f.admin.Create(f.ctx, validInput(f.now))
	require.NoError(t, err)
	require.NoError(t, f.admin.Delete(f.ctx, e.ID))

	got, err := f.admin.Update(f.ctx, e.ID, EventPatch{IsActive: ptr(true)})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	_, err = f.admin.Get(f.ctx, e.ID, false)
	require.NoError(t, err)

	uid := f.user(t, 1)
	_, err = f.ledger.Register(f.ctx, e.ID, uid)
	require.NoError(t, err)

	// deactivating through Update is refused like Delete
	_, err = f.admin.Update(f.ctx, e.ID, EventPatch{IsActive: ptr(false)})
	assert.ErrorIs(t, err, ErrConflict)
	got, err = f.admin.Get(f.ctx, e.ID, false)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestEventService_DeleteRefusedWithActiveRegistrations(t *testing.T) {
	f := newFixture(t, nil)
	e, err := f.admin.Create(f.ctx, validInput(f.now))
	require.NoError(t, err)
	uid := f.user(t, 1)
	reg, err := f.ledger.Register(f.ctx, e.ID, uid)
	require.NoError(t, err)

	assert.ErrorIs(t, f.admin.Delete(f.ctx, e.ID), ErrConflict)

	_, err = f.ledger.Cancel(f.ctx, reg.ID, uid)
	require.NoError(t, err)
	require.NoError(t, f.admin.Delete(f.ctx, e.ID))

	_, err = f.admin.Get(f.ctx, e.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := f.admin.Get(f.ctx, e.ID, true)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, f.admin.Delete(f.ctx, e.ID), ErrNotFound)
}

func TestEventService_ListAndAvailability(t *testing.T) {
	f := newFixture(t, nil)
	past := f.eventAt(t, 5, f.now.Add(-48*time.Hour), f.now.Add(-72*time.Hour))
	upcoming := f.event(t, 2)
	_, err := f.ledger.Register(f.ctx, upcoming.ID, f.user(t, 1))
	require.NoError(t, err)

	list, total, err := f.admin.List(f.ctx, model.EventFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, upcoming.ID, list[0].ID)

	list, total, err = f.admin.List(f.ctx, model.EventFilter{IncludePast: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, past.ID, list[0].ID)

	// total counts every match, not just the page
	list, total, err = f.admin.List(f.ctx, model.EventFilter{IncludePast: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, upcoming.ID, list[0].ID)

	av, err := f.admin.Availability(f.ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, Availability{
		EventID:              upcoming.ID,
		Capacity:             2,
		CurrentRegistrations: 1,
		AvailableSpots:       1,
		IsFull:               false,
		RegistrationOpen:     true,
	}, av)

	av, err = f.admin.Availability(f.ctx, past.ID)
	require.NoError(t, err)
	assert.False(t, av.RegistrationOpen)
}

func TestEventService_Search(t *testing.T) {
	f := newFixture(t, nil)
	full := f.event(t, 1)
	_, err := f.ledger.Register(f.ctx, full.ID, f.user(t, 1))
	require.NoError(t, err)

	in := validInput(f.now)
	in.Title = "Rust vs Go debate"
	in.Location = "Main Hall"
	open, err := f.admin.Create(f.ctx, in)
	require.NoError(t, err)

	got, total, err := f.admin.Search(f.ctx, repository.EventSearchQuery{Location: "main hall"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)

	// "open" drops the event with no spots left
	got, total, err = f.admin.Search(f.ctx, repository.EventSearchQuery{When: "open"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, open.ID, got[0].ID)

	_, total, err = f.admin.Search(f.ctx, repository.EventSearchQuery{PageSize: 1, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
