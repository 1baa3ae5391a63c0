package event

import (
	"fmt"
	"time"
)

// PropertyEdit is one targeted change to a single event property. The
// closed set of variants replaces free-form property-name dispatch, so
// an unknown property cannot reach the store.
type PropertyEdit interface {
	isPropertyEdit()
}

type EditSubject struct{ Subject string }

// EditStart replaces the start date and time together.
type EditStart struct {
	Date Date
	Time TimeOfDay
}

// EditEnd replaces the end date and time together.
type EditEnd struct {
	Date Date
	Time TimeOfDay
}

type EditDescription struct{ Description string }

type EditStatus struct{ Status Status }

type EditLocation struct{ Location Location }

func (EditSubject) isPropertyEdit()     {}
func (EditStart) isPropertyEdit()       {}
func (EditEnd) isPropertyEdit()         {}
func (EditDescription) isPropertyEdit() {}
func (EditStatus) isPropertyEdit()      {}
func (EditLocation) isPropertyEdit()    {}

// ApplyEdit applies the edit in place. A new value equal to the current
// one is a no-op, reported as changed=false with no error; it is not a
// failure. The caller owns re-keying when a key-bearing field changed.
func (e *Event) ApplyEdit(edit PropertyEdit) (changed bool, err error) {
	switch v := edit.(type) {
	case EditSubject:
		if v.Subject == e.Subject {
			return false, nil
		}
		if v.Subject == "" {
			return false, fmt.Errorf("%w: subject is required", ErrInvalidEvent)
		}
		e.Subject = v.Subject
	case EditStart:
		if v.Date == e.StartDate && v.Time == e.StartTime {
			return false, nil
		}
		if v.Date.IsZero() {
			return false, fmt.Errorf("%w: start date is required", ErrInvalidEvent)
		}
		e.StartDate = v.Date
		e.StartTime = v.Time
	case EditEnd:
		if v.Date == e.EndDate && v.Time == e.EndTime {
			return false, nil
		}
		if v.Date.IsZero() {
			return false, fmt.Errorf("%w: end date is required", ErrInvalidEvent)
		}
		e.EndDate = v.Date
		e.EndTime = v.Time
	case EditDescription:
		if v.Description == e.Description {
			return false, nil
		}
		e.Description = v.Description
	case EditStatus:
		if v.Status == e.Status {
			return false, nil
		}
		if _, err := ParseStatus(string(v.Status)); err != nil {
			return false, err
		}
		e.Status = v.Status
	case EditLocation:
		if v.Location == e.Location {
			return false, nil
		}
		if _, err := ParseLocation(string(v.Location)); err != nil {
			return false, err
		}
		e.Location = v.Location
	default:
		return false, fmt.Errorf("%w: unsupported edit %T", ErrInvalidEvent, edit)
	}
	return true, nil
}

// KeyAfter simulates the key the event would have after the edit,
// without mutating the event. Used for duplicate checks before an edit
// is committed.
func (e *Event) KeyAfter(edit PropertyEdit) Key {
	trial := e.Clone()
	trial.ApplyEdit(edit) //nolint:errcheck // invalid edits leave the clone untouched
	return trial.Key()
}

// ParsePropertyEdit converts an external (property, value) pair into a
// typed edit. Date-time values use "2006-01-02T15:04"; it exists for
// the API boundary only.
func ParsePropertyEdit(property, value string) (PropertyEdit, error) {
	switch property {
	case "subject":
		return EditSubject{Subject: value}, nil
	case "start":
		t, err := time.Parse("2006-01-02T15:04", value)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start date/time %q", ErrInvalidEvent, value)
		}
		return EditStart{Date: DateOf(t), Time: TimeOfDayOf(t)}, nil
	case "end":
		t, err := time.Parse("2006-01-02T15:04", value)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid end date/time %q", ErrInvalidEvent, value)
		}
		return EditEnd{Date: DateOf(t), Time: TimeOfDayOf(t)}, nil
	case "description":
		return EditDescription{Description: value}, nil
	case "status":
		status, err := ParseStatus(value)
		if err != nil {
			return nil, err
		}
		return EditStatus{Status: status}, nil
	case "location":
		location, err := ParseLocation(value)
		if err != nil {
			return nil, err
		}
		return EditLocation{Location: location}, nil
	}
	return nil, fmt.Errorf("%w: unknown property %q", ErrInvalidEvent, property)
}
