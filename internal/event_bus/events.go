package event_bus

const (
	EventCreated  EventType = "event.created"
	SeriesCreated EventType = "event.series.created"
	EventEdited   EventType = "event.edited"
	EventsCopied  EventType = "event.copied"
)

// EventChanged describes one created or edited calendar event.
type EventChanged struct {
	Calendar string
	Subject  string
	Start    string
	End      string
	SeriesID string
}

// SeriesExpanded describes a newly expanded recurring series.
type SeriesExpanded struct {
	Calendar    string
	SeriesID    string
	Occurrences int
}

// CopyCompleted summarizes a copy operation between calendars.
type CopyCompleted struct {
	SourceCalendar string
	TargetCalendar string
	Copied         int
	Conflicts      int
}
