package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora/tempora/pkg/event"
)

func storeWithSeries(t *testing.T, seriesID string) (*EventStore, []*event.Event) {
	t.Helper()
	store := NewEventStore()
	var members []*event.Event
	for _, day := range []event.Date{monday, wednesday, friday} {
		member := testEvent("Standup", day, tenAM, elevenAM)
		member.SeriesID = seriesID
		require.NoError(t, store.Save(member))
		members = append(members, member)
	}
	return store, members
}

func TestEventStore_EditScoped_Single(t *testing.T) {
	store := NewEventStore()
	e := testEvent("Meeting", monday, tenAM, elevenAM)
	require.NoError(t, store.Save(e))

	result, err := store.EditScoped(e.Key(), EditScopeSingle, event.EditSubject{Subject: "Review"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Edited)
	assert.True(t, result.Changed)
	assert.Equal(t, "Review", e.Subject)
}

func TestEventStore_EditScoped_SingleOnSeriesMemberKeepsSeriesID(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")

	result, err := store.EditScoped(members[1].Key(), EditScopeSingle, event.EditSubject{Subject: "Standup (moved)"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Edited)
	assert.Equal(t, "series-1", result.SeriesID)

	// Only the targeted occurrence changed; all keep their series id.
	assert.Equal(t, "Standup (moved)", members[1].Subject)
	assert.Equal(t, "Standup", members[0].Subject)
	assert.Equal(t, "series-1", members[1].SeriesID)
}

func TestEventStore_EditScoped_SeriesSubject(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")

	result, err := store.EditScoped(members[1].Key(), EditScopeSeries, event.EditSubject{Subject: "Daily sync"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Edited)
	assert.True(t, result.Changed)
	assert.Equal(t, "series-1", result.SeriesID)

	for _, member := range members {
		assert.Equal(t, "Daily sync", member.Subject)
	}
	// Everything is reachable under the new keys.
	for _, day := range []event.Date{monday, wednesday, friday} {
		_, err := store.Lookup("Daily sync", day, day, tenAM, elevenAM)
		assert.NoError(t, err)
	}
}

func TestEventStore_EditScoped_SeriesStartShiftsTimeOnly(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")

	nineAM := event.NewTimeOfDay(9, 0)
	result, err := store.EditScoped(members[0].Key(), EditScopeSeries, event.EditStart{Date: monday, Time: nineAM})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Edited)

	// Each occurrence keeps its own date but moves to 09:00.
	for i, day := range []event.Date{monday, wednesday, friday} {
		assert.Equal(t, day, members[i].StartDate)
		assert.Equal(t, nineAM, members[i].StartTime)
	}
	assert.Equal(t, "series-1", result.SeriesID)
}

func TestEventStore_EditScoped_FollowingEditsLaterMembersOnly(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")

	result, err := store.EditScoped(members[1].Key(), EditScopeFollowing, event.EditDescription{Description: "new room"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Edited)

	assert.Empty(t, members[0].Description)
	assert.Equal(t, "new room", members[1].Description)
	assert.Equal(t, "new room", members[2].Description)
}

func TestEventStore_EditScoped_FollowingStartSplitsSeries(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")

	nineAM := event.NewTimeOfDay(9, 0)
	result, err := store.EditScoped(members[1].Key(), EditScopeFollowing, event.EditStart{Date: wednesday, Time: nineAM})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Edited)

	// The edited tail moves to a fresh series id.
	assert.NotEqual(t, "series-1", result.SeriesID)
	assert.NotEmpty(t, result.SeriesID)
	assert.Equal(t, "series-1", members[0].SeriesID)
	assert.Equal(t, result.SeriesID, members[1].SeriesID)
	assert.Equal(t, result.SeriesID, members[2].SeriesID)

	// Earlier members are untouched; every affected member takes the
	// edited start date and time, keeping its own end date.
	assert.Equal(t, monday, members[0].StartDate)
	assert.Equal(t, tenAM, members[0].StartTime)
	assert.Equal(t, wednesday, members[1].StartDate)
	assert.Equal(t, nineAM, members[1].StartTime)
	assert.Equal(t, wednesday, members[2].StartDate)
	assert.Equal(t, friday, members[2].EndDate)
	assert.Equal(t, nineAM, members[2].StartTime)

	_, err = store.Lookup("Standup", wednesday, wednesday, nineAM, elevenAM)
	assert.NoError(t, err)
	_, err = store.Lookup("Standup", wednesday, friday, nineAM, elevenAM)
	assert.NoError(t, err)
}

func TestEventStore_EditScoped_FollowingStartRejectsDateBeforeAnyEnd(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")

	// Moving the tail's start past a member's end date fails the whole
	// batch; nothing is touched.
	_, err := store.EditScoped(members[1].Key(), EditScopeFollowing,
		event.EditStart{Date: friday.AddDays(7), Time: tenAM})
	assert.ErrorIs(t, err, event.ErrInvalidEvent)

	for i, day := range []event.Date{monday, wednesday, friday} {
		assert.Equal(t, day, members[i].StartDate)
		assert.Equal(t, "series-1", members[i].SeriesID)
	}
}

func TestEventStore_EditScoped_BatchIsAllOrNothing(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")
	// A standalone event already owns the key one member would move to.
	blocker := testEvent("Planning", wednesday, tenAM, elevenAM)
	require.NoError(t, store.Save(blocker))

	_, err := store.EditScoped(members[0].Key(), EditScopeSeries, event.EditSubject{Subject: "Planning"})
	assert.ErrorIs(t, err, ErrDuplicateEvent)

	// No member was touched.
	for _, member := range members {
		assert.Equal(t, "Standup", member.Subject)
	}
	assert.Equal(t, 4, store.Size())
}

func TestEventStore_EditScoped_BatchOnStandaloneDegeneratesToSingle(t *testing.T) {
	store := NewEventStore()
	e := testEvent("Meeting", monday, tenAM, elevenAM)
	require.NoError(t, store.Save(e))

	result, err := store.EditScoped(e.Key(), EditScopeSeries, event.EditSubject{Subject: "Review"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Edited)
	assert.Empty(t, result.SeriesID)
	assert.Equal(t, "Review", e.Subject)
}

func TestEventStore_EditScoped_NoOpReportsUnchanged(t *testing.T) {
	store, members := storeWithSeries(t, "series-1")

	result, err := store.EditScoped(members[0].Key(), EditScopeSeries, event.EditSubject{Subject: "Standup"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Edited)
	assert.False(t, result.Changed)
}

func TestEventStore_EditScoped_UnknownScope(t *testing.T) {
	store := NewEventStore()
	e := testEvent("Meeting", monday, tenAM, elevenAM)
	require.NoError(t, store.Save(e))

	_, err := store.EditScoped(e.Key(), EditScope("everything"), event.EditSubject{Subject: "X"})
	assert.ErrorIs(t, err, event.ErrInvalidEvent)
}

func TestEventStore_EditScoped_MissingTarget(t *testing.T) {
	store := NewEventStore()

	_, err := store.EditScoped(event.Key{Subject: "Ghost"}, EditScopeSingle, event.EditSubject{Subject: "X"})
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = store.EditScoped(event.Key{Subject: "Ghost"}, EditScopeSeries, event.EditSubject{Subject: "X"})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCalendar_SetZone_ShiftsStoredEvents(t *testing.T) {
	cal := testCalendar(t, "Work", "America/New_York")
	require.NoError(t, cal.Store().Save(testEvent("Meeting", monday, tenAM, elevenAM)))

	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	require.NoError(t, cal.SetZone(london))

	// 10:00 EDT on June 2nd is 15:00 the same day in London.
	shifted, err := cal.Store().Lookup("Meeting", monday, monday, event.NewTimeOfDay(15, 0), event.NewTimeOfDay(16, 0))
	require.NoError(t, err)
	assert.Equal(t, event.NewTimeOfDay(15, 0), shifted.StartTime)
	assert.Equal(t, 1, cal.Store().Size())
}
