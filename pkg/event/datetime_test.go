package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AddDays(t *testing.T) {
	tests := []struct {
		name string
		date Date
		days int
		want Date
	}{
		{
			name: "within a month",
			date: NewDate(2025, time.June, 2),
			days: 3,
			want: NewDate(2025, time.June, 5),
		},
		{
			name: "across a month boundary",
			date: NewDate(2025, time.June, 30),
			days: 1,
			want: NewDate(2025, time.July, 1),
		},
		{
			name: "across a year boundary",
			date: NewDate(2025, time.December, 31),
			days: 1,
			want: NewDate(2026, time.January, 1),
		},
		{
			name: "backwards",
			date: NewDate(2025, time.March, 1),
			days: -1,
			want: NewDate(2025, time.February, 28),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.date.AddDays(tt.days))
		})
	}
}

func TestDate_Ordering(t *testing.T) {
	earlier := NewDate(2025, time.June, 2)
	later := NewDate(2025, time.June, 3)

	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Before(earlier))
}

func TestDaysBetween(t *testing.T) {
	a := NewDate(2025, time.June, 2)
	b := NewDate(2025, time.June, 9)

	assert.Equal(t, 7, DaysBetween(a, b))
	assert.Equal(t, -7, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.June, 2), date)
	assert.Equal(t, "2025-06-02", date.String())

	_, err = ParseDate("02/06/2025")
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(9, 30), tod)
	assert.Equal(t, "09:30", tod.String())

	_, err = ParseTimeOfDay("9:30pm")
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestTimeOfDay_Before(t *testing.T) {
	assert.True(t, NewTimeOfDay(9, 0).Before(NewTimeOfDay(9, 30)))
	assert.True(t, NewTimeOfDay(8, 59).Before(NewTimeOfDay(9, 0)))
	assert.False(t, NewTimeOfDay(9, 30).Before(NewTimeOfDay(9, 30)))
}

func TestDate_At_RoundTrip(t *testing.T) {
	date := NewDate(2025, time.June, 2)
	tod := NewTimeOfDay(10, 15)

	instant := date.At(tod, time.UTC)
	assert.Equal(t, date, DateOf(instant))
	assert.Equal(t, tod, TimeOfDayOf(instant))
}

func TestDate_Weekday(t *testing.T) {
	assert.Equal(t, time.Monday, NewDate(2025, time.June, 2).Weekday())
	assert.Equal(t, time.Sunday, NewDate(2025, time.June, 1).Weekday())
}
