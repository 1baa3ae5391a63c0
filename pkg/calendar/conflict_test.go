package calendar

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora/tempora/pkg/event"
)

func TestOverlaps(t *testing.T) {
	existing := testEvent("Meeting", monday, tenAM, elevenAM)

	at := func(tod event.TimeOfDay) time.Time {
		return monday.At(tod, time.UTC)
	}

	tests := []struct {
		name  string
		start event.TimeOfDay
		end   event.TimeOfDay
		want  bool
	}{
		{
			name:  "fully inside",
			start: event.NewTimeOfDay(10, 15),
			end:   event.NewTimeOfDay(10, 45),
			want:  true,
		},
		{
			name:  "fully covering",
			start: event.NewTimeOfDay(9, 0),
			end:   noon,
			want:  true,
		},
		{
			name:  "crossing the start",
			start: event.NewTimeOfDay(9, 30),
			end:   event.NewTimeOfDay(10, 30),
			want:  true,
		},
		{
			name:  "crossing the end",
			start: event.NewTimeOfDay(10, 30),
			end:   event.NewTimeOfDay(11, 30),
			want:  true,
		},
		{
			name:  "back to back before",
			start: event.NewTimeOfDay(9, 0),
			end:   tenAM,
			want:  false,
		},
		{
			name:  "back to back after",
			start: elevenAM,
			end:   noon,
			want:  false,
		},
		{
			name:  "disjoint",
			start: event.NewTimeOfDay(14, 0),
			end:   event.NewTimeOfDay(15, 0),
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(existing, at(tt.start), at(tt.end)))
		})
	}
}

func TestEventStore_HasConflict(t *testing.T) {
	store := NewEventStore()
	require.NoError(t, store.Save(testEvent("Meeting", monday, tenAM, elevenAM)))

	assert.True(t, store.HasConflict(testEvent("Standup", monday, event.NewTimeOfDay(10, 30), noon)))
	assert.False(t, store.HasConflict(testEvent("Standup", monday, elevenAM, noon)))
	assert.False(t, store.HasConflict(testEvent("Standup", tuesday, tenAM, elevenAM)))
	assert.False(t, store.HasConflict(nil))
}

func TestEventStore_SaveIfNoConflict(t *testing.T) {
	store := NewEventStore()
	require.NoError(t, store.Save(testEvent("Meeting", monday, tenAM, elevenAM)))

	// Overlapping candidate is rejected without saving.
	saved, err := store.SaveIfNoConflict(testEvent("Standup", monday, event.NewTimeOfDay(10, 30), noon))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 1, store.Size())

	// Back-to-back candidate goes in.
	saved, err = store.SaveIfNoConflict(testEvent("Standup", monday, elevenAM, noon))
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 2, store.Size())
}

func TestEventStore_SaveIfNoConflict_ConcurrentWritersBookOnce(t *testing.T) {
	store := NewEventStore()

	// All candidates overlap the same slot; exactly one may win.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := testEvent(fmt.Sprintf("Booking %d", i), monday, tenAM, elevenAM)
			_, err := store.SaveIfNoConflict(candidate)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.Size())
}

func TestEventStore_HasConflict_AcrossDays(t *testing.T) {
	store := NewEventStore()
	overnight := &event.Event{
		Subject:   "Hackathon",
		StartDate: monday,
		EndDate:   tuesday,
		StartTime: event.NewTimeOfDay(20, 0),
		EndTime:   event.NewTimeOfDay(6, 0),
		Location:  event.LocationPhysical,
		Status:    event.StatusPrivate,
	}
	require.NoError(t, store.Save(overnight))

	assert.True(t, store.HasConflict(testEvent("Breakfast", tuesday, event.NewTimeOfDay(5, 0), event.NewTimeOfDay(5, 30))))
	assert.False(t, store.HasConflict(testEvent("Lunch", tuesday, noon, event.NewTimeOfDay(13, 0))))
}
