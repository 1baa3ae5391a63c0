package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora/tempora/pkg/event"
)

func testEvent(subject string, day event.Date, start, end event.TimeOfDay) *event.Event {
	return &event.Event{
		Subject:   subject,
		StartDate: day,
		EndDate:   day,
		StartTime: start,
		EndTime:   end,
		Location:  event.LocationOnline,
		Status:    event.StatusPrivate,
	}
}

var (
	monday    = event.NewDate(2025, time.June, 2)
	tuesday   = event.NewDate(2025, time.June, 3)
	wednesday = event.NewDate(2025, time.June, 4)
	friday    = event.NewDate(2025, time.June, 6)

	tenAM    = event.NewTimeOfDay(10, 0)
	elevenAM = event.NewTimeOfDay(11, 0)
	noon     = event.NewTimeOfDay(12, 0)
)

func TestEventStore_SaveAndLookup(t *testing.T) {
	store := NewEventStore()
	e := testEvent("Meeting", monday, tenAM, elevenAM)

	require.NoError(t, store.Save(e))

	found, err := store.Lookup("Meeting", monday, monday, tenAM, elevenAM)
	require.NoError(t, err)
	assert.Same(t, e, found)

	_, err = store.Lookup("Meeting", tuesday, tuesday, tenAM, elevenAM)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventStore_SaveDuplicateRejected(t *testing.T) {
	store := NewEventStore()
	require.NoError(t, store.Save(testEvent("Meeting", monday, tenAM, elevenAM)))

	err := store.Save(testEvent("Meeting", monday, tenAM, elevenAM))
	assert.ErrorIs(t, err, ErrDuplicateEvent)
	assert.Equal(t, 1, store.Size())

	// A different subject at the same time is a different identity.
	require.NoError(t, store.Save(testEvent("Standup", monday, tenAM, elevenAM)))
	assert.Equal(t, 2, store.Size())
}

func TestEventStore_SaveInvalidEvent(t *testing.T) {
	store := NewEventStore()
	invalid := testEvent("", monday, tenAM, elevenAM)

	err := store.Save(invalid)
	assert.ErrorIs(t, err, event.ErrInvalidEvent)
	assert.Equal(t, 0, store.Size())
}

func TestEventStore_EventsOn(t *testing.T) {
	store := NewEventStore()
	require.NoError(t, store.Save(testEvent("Meeting", monday, tenAM, elevenAM)))
	require.NoError(t, store.Save(testEvent("Standup", monday, noon, event.NewTimeOfDay(12, 30))))
	require.NoError(t, store.Save(testEvent("Review", tuesday, tenAM, elevenAM)))

	assert.Len(t, store.EventsOn(monday), 2)
	assert.Len(t, store.EventsOn(tuesday), 1)
	assert.Empty(t, store.EventsOn(friday))
}

func TestEventStore_EventsInRange(t *testing.T) {
	store := NewEventStore()
	require.NoError(t, store.Save(testEvent("Meeting", monday, tenAM, elevenAM)))
	require.NoError(t, store.Save(testEvent("Review", tuesday, tenAM, elevenAM)))
	require.NoError(t, store.Save(testEvent("Retro", friday, tenAM, elevenAM)))

	from := monday.At(event.TimeOfDay{}, time.UTC)
	to := wednesday.At(event.NewTimeOfDay(23, 59), time.UTC)

	events, err := store.EventsInRange(from, to)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = store.EventsInRange(to, from)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestEventStore_SearchBySubject(t *testing.T) {
	store := NewEventStore()
	require.NoError(t, store.Save(testEvent("Team meeting", monday, tenAM, elevenAM)))
	require.NoError(t, store.Save(testEvent("Client Meeting", tuesday, tenAM, elevenAM)))
	require.NoError(t, store.Save(testEvent("Lunch", wednesday, noon, event.NewTimeOfDay(13, 0))))

	found := store.SearchBySubject("meeting")
	require.Len(t, found, 2)
	// Sorted by start.
	assert.Equal(t, "Team meeting", found[0].Subject)
	assert.Equal(t, "Client Meeting", found[1].Subject)

	assert.Empty(t, store.SearchBySubject("standup"))
}

func TestEventStore_BusyAt(t *testing.T) {
	store := NewEventStore()
	require.NoError(t, store.Save(testEvent("Meeting", monday, tenAM, elevenAM)))

	assert.True(t, store.BusyAt(monday, tenAM))
	// Only the exact start minute counts as busy.
	assert.False(t, store.BusyAt(monday, event.NewTimeOfDay(10, 30)))
	assert.False(t, store.BusyAt(tuesday, tenAM))
}

func TestEventStore_Update(t *testing.T) {
	store := NewEventStore()
	e := testEvent("Meeting", monday, tenAM, elevenAM)
	require.NoError(t, store.Save(e))

	newKey, changed, err := store.Update(e.Key(), event.EditStart{Date: tuesday, Time: tenAM})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, tuesday, newKey.StartDate)

	// Re-indexed under the new key.
	_, err = store.Get(event.Key{Subject: "Meeting", StartDate: monday, EndDate: monday, StartTime: tenAM, EndTime: elevenAM})
	assert.ErrorIs(t, err, ErrEventNotFound)
	found, err := store.Get(newKey)
	require.NoError(t, err)
	assert.Same(t, e, found)
}

func TestEventStore_UpdateNoOp(t *testing.T) {
	store := NewEventStore()
	e := testEvent("Meeting", monday, tenAM, elevenAM)
	require.NoError(t, store.Save(e))

	key, changed, err := store.Update(e.Key(), event.EditSubject{Subject: "Meeting"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, e.Key(), key)
}

func TestEventStore_UpdateCollision(t *testing.T) {
	store := NewEventStore()
	a := testEvent("Meeting", monday, tenAM, elevenAM)
	b := testEvent("Review", monday, tenAM, elevenAM)
	require.NoError(t, store.Save(a))
	require.NoError(t, store.Save(b))

	_, _, err := store.Update(b.Key(), event.EditSubject{Subject: "Meeting"})
	assert.ErrorIs(t, err, ErrDuplicateEvent)
	// Nothing moved.
	assert.Equal(t, "Review", b.Subject)
	assert.Equal(t, 2, store.Size())
}

func TestEventStore_UpdateInvalidResult(t *testing.T) {
	store := NewEventStore()
	e := testEvent("Meeting", monday, tenAM, elevenAM)
	require.NoError(t, store.Save(e))

	// Moving the start past the end date must not be stored.
	_, _, err := store.Update(e.Key(), event.EditStart{Date: tuesday.AddDays(7), Time: tenAM})
	assert.ErrorIs(t, err, event.ErrInvalidEvent)
	assert.Equal(t, monday, e.StartDate)
}

func TestEventStore_UpdateMissingEvent(t *testing.T) {
	store := NewEventStore()

	_, _, err := store.Update(event.Key{Subject: "Ghost"}, event.EditSubject{Subject: "Still a ghost"})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSortByStart(t *testing.T) {
	events := []*event.Event{
		testEvent("B", tuesday, tenAM, elevenAM),
		testEvent("A", monday, noon, event.NewTimeOfDay(13, 0)),
		testEvent("C", monday, tenAM, elevenAM),
	}

	SortByStart(events)

	assert.Equal(t, "C", events[0].Subject)
	assert.Equal(t, "A", events[1].Subject)
	assert.Equal(t, "B", events[2].Subject)
}
