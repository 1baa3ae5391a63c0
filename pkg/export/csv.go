// Package export renders a calendar's events into interchange formats.
package export

import (
	"bytes"
	"encoding/csv"

	log "github.com/sirupsen/logrus"

	"github.com/tempora/tempora/pkg/calendar"
	"github.com/tempora/tempora/pkg/event"
)

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

// RenderEvents writes one row per event, sorted by start, with a
// spreadsheet-friendly header.
func (t *CsvRendererImpl) RenderEvents(events []*event.Event) (string, error) {
	calendar.SortByStart(events)

	data := make([][]string, 0, len(events)+1)
	data = append(data, []string{"Subject", "Start Date", "Start Time", "End Date", "End Time", "Description", "Location", "Status"})
	for _, e := range events {
		data = append(data, []string{
			e.Subject,
			e.StartDate.String(),
			e.StartTime.String(),
			e.EndDate.String(),
			e.EndTime.String(),
			e.Description,
			string(e.Location),
			string(e.Status),
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
