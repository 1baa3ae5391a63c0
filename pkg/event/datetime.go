package event

import (
	"fmt"
	"time"
)

// Date is a zone-naive calendar day. It is comparable, so it can take
// part in map keys, unlike time.Time whose Location pointer breaks
// equality between otherwise identical values.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf extracts the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate reads a date in ISO form, 2006-01-02.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrInvalidEvent, s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// At combines the date with a time of day into an instant in loc.
func (d Date) At(t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

// AddDays returns the date n days later, normalized across month and
// year boundaries.
func (d Date) AddDays(n int) Date {
	return DateOf(d.At(TimeOfDay{}, time.UTC).AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.At(TimeOfDay{}, time.UTC).Weekday()
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

// DaysBetween counts the calendar days from a to b; negative when b is
// before a.
func DaysBetween(a, b Date) int {
	diff := b.At(TimeOfDay{}, time.UTC).Sub(a.At(TimeOfDay{}, time.UTC))
	return int(diff.Hours() / 24)
}

// TimeOfDay is a zone-naive wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// TimeOfDayOf extracts the wall-clock time of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseTimeOfDay reads a time in 24-hour form, 15:04.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: invalid time %q", ErrInvalidEvent, s)
	}
	return TimeOfDayOf(t), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.minutes() < other.minutes()
}
