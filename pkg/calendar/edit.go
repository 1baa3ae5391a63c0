package calendar

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/pkg/event"
)

// EditScope selects how far an edit propagates through a series.
type EditScope string

const (
	// EditScopeSingle edits only the located occurrence.
	EditScopeSingle EditScope = "single"
	// EditScopeFollowing edits the located occurrence and every series
	// member starting on or after it.
	EditScopeFollowing EditScope = "following"
	// EditScopeSeries edits every member of the series.
	EditScopeSeries EditScope = "series"
)

// EditResult reports what a scoped edit touched.
type EditResult struct {
	Edited   int
	Changed  bool
	SeriesID string // series id after the edit; a new one when a start edit split the series
}

// EditScoped applies the edit to the event stored under target and, for
// the series scopes, to the rest of its series. Batch scopes validate
// every member against the duplicate-key rule first and abort without
// touching anything when one member would collide: a batch is all or
// nothing. Copies of the no-op rule apply per member, so an edit equal
// to a member's current value leaves that member alone without failing
// the batch.
//
// A single-scope edit on a series member keeps the member's series id
// even though only that occurrence changes; the stale membership is
// logged so it is at least observable.
func (s *EventStore) EditScoped(target event.Key, scope EditScope, edit event.PropertyEdit) (*EditResult, error) {
	switch scope {
	case EditScopeSingle:
		return s.editSingle(target, edit)
	case EditScopeFollowing, EditScopeSeries:
		return s.editBatch(target, scope, edit)
	}
	return nil, fmt.Errorf("%w: unknown edit scope %q", event.ErrInvalidEvent, scope)
}

func (s *EventStore) editSingle(target event.Key, edit event.PropertyEdit) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, target)
	}
	if e.InSeries() {
		log.Warnf("editing single occurrence %s of series %s; the occurrence keeps its series id", target, e.SeriesID)
	}
	_, changed, err := s.updateLocked(target, edit)
	if err != nil {
		return nil, err
	}
	return &EditResult{Edited: 1, Changed: changed, SeriesID: e.SeriesID}, nil
}

func (s *EventStore) editBatch(target event.Key, scope EditScope, edit event.PropertyEdit) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, target)
	}

	// A standalone target degenerates to a single edit.
	if !e.InSeries() {
		_, changed, err := s.updateLocked(target, edit)
		if err != nil {
			return nil, err
		}
		return &EditResult{Edited: 1, Changed: changed}, nil
	}

	var members []*event.Event
	for _, candidate := range s.events {
		if candidate.SeriesID != e.SeriesID {
			continue
		}
		if scope == EditScopeFollowing && candidate.StartDate.Before(e.StartDate) {
			continue
		}
		members = append(members, candidate)
	}

	// A series-wide start edit shifts only the time of day, keeping each
	// occurrence's own date. The this-and-future scope applies the edit
	// as given, moving every affected member to the edited start date;
	// keys stay distinct because each member keeps its own end date.
	editFor := func(member *event.Event) event.PropertyEdit {
		if start, ok := edit.(event.EditStart); ok && scope == EditScopeSeries {
			return event.EditStart{Date: member.StartDate, Time: start.Time}
		}
		return edit
	}

	// Validate the whole batch before mutating anything.
	for _, member := range members {
		trial := member.Clone()
		changed, err := trial.ApplyEdit(editFor(member))
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}
		if err := trial.Validate(); err != nil {
			return nil, err
		}
		newKey := trial.Key()
		if newKey == member.Key() {
			continue
		}
		if other, taken := s.events[newKey]; taken && other != member {
			return nil, fmt.Errorf("%w: editing %s would collide with %s", ErrDuplicateEvent, member.Key(), newKey)
		}
	}

	// A start edit limited to this-and-future splits the series: the
	// affected occurrences move to a fresh id.
	_, isStartEdit := edit.(event.EditStart)
	seriesID := e.SeriesID
	if isStartEdit && scope == EditScopeFollowing {
		seriesID = uuid.NewString()
	}

	result := &EditResult{SeriesID: seriesID}
	for _, member := range members {
		oldKey := member.Key()
		changed, err := member.ApplyEdit(editFor(member))
		if err != nil {
			return result, err
		}
		member.SeriesID = seriesID
		if changed {
			result.Changed = true
			delete(s.events, oldKey)
			s.events[member.Key()] = member
		}
		result.Edited++
	}
	return result, nil
}
