package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// DefaultCalendarID targets the authenticated user's primary calendar.
const DefaultCalendarID = "primary"

// Event is a trimmed view of a Calendar event for tool output.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       string
	End         string
	Link        string
}

// CalendarClient exposes the Calendar operations the assistant can perform.
type CalendarClient struct {
	svc        *calendar.Service
	calendarID string
}

// NewCalendarClient wraps a Calendar service. An empty calendarID
// falls back to the primary calendar.
func NewCalendarClient(svc *calendar.Service, calendarID string) *CalendarClient {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &CalendarClient{svc: svc, calendarID: calendarID}
}

// ListEvents returns single events between from and to, ordered by
// start time.
func (c *CalendarClient) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	resp, err := c.svc.Events.List(c.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google: list events: %w", err)
	}
	out := make([]Event, 0, len(resp.Items))
	for _, ev := range resp.Items {
		out = append(out, toEvent(ev))
	}
	return out, nil
}

// CreateEvent inserts an event with the given window.
func (c *CalendarClient) CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (Event, error) {
	ev := &calendar.Event{
		Summary:     summary,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("google: create event %q: %w", summary, err)
	}
	return toEvent(created), nil
}

// UpdateEvent patches an existing event. Zero-valued fields are left
// unchanged.
func (c *CalendarClient) UpdateEvent(ctx context.Context, eventID, summary, description string, start, end time.Time) (Event, error) {
	patch := &calendar.Event{}
	if summary != "" {
		patch.Summary = summary
	}
	if description != "" {
		patch.Description = description
	}
	if !start.IsZero() {
		patch.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)}
	}
	if !end.IsZero() {
		patch.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}
	}
	updated, err := c.svc.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("google: update event %s: %w", eventID, err)
	}
	return toEvent(updated), nil
}

// DeleteEvent removes an event by ID.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("google: delete event %s: %w", eventID, err)
	}
	return nil
}

func toEvent(ev *calendar.Event) Event {
	e := Event{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Link:        ev.HtmlLink,
	}
	if ev.Start != nil {
		e.Start = eventTime(ev.Start)
	}
	if ev.End != nil {
		e.End = eventTime(ev.End)
	}
	return e
}

// eventTime prefers the timed value and falls back to the all-day date.
func eventTime(t *calendar.EventDateTime) string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
