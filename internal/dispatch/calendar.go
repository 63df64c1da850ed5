package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caesar-ai/caesar-go/internal/connectors/google"
)

// CalendarAPI is the subset of the Calendar connector the dispatcher
// calls. Tests substitute a fake.
type CalendarAPI interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]google.Event, error)
	CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (google.Event, error)
	UpdateEvent(ctx context.Context, eventID, summary, description string, start, end time.Time) (google.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// RegisterCalendarTools binds the google_calendar_* tools to a
// Calendar client. now supplies the reference time for temporal
// defaults; pass time.Now in production.
func RegisterCalendarTools(r *Registry, api CalendarAPI, now func() time.Time) {
	r.Register(Tool{
		Name:        "google_calendar_list_events",
		Description: "Lists calendar events in a time range. Both bounds optional; defaults to the coming week.",
		Fields:      []string{"start", "end"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			from, to, err := ResolveRange(args.Get("start"), args.Get("end"), now())
			if err != nil {
				return "", err
			}
			events, err := api.ListEvents(ctx, from, to)
			if err != nil {
				return "", err
			}
			if len(events) == 0 {
				return fmt.Sprintf("No events between %s and %s.", from.Format("2006-01-02"), to.Format("2006-01-02")), nil
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "%d event(s):\n", len(events))
			for _, ev := range events {
				fmt.Fprintf(&sb, "- %s (%s ~ %s) [id: %s]\n", ev.Summary, ev.Start, ev.End, ev.ID)
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	})

	r.Register(Tool{
		Name:        "google_calendar_create_event",
		Description: "Creates a calendar event. Requires a summary and start time; end defaults to one hour after start.",
		Fields:      []string{"summary", "start", "end", "description"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"summary", "start", "end", "description"}, "summary", "start"); err != nil {
				return "", err
			}
			start, err := ParseTime(args.Get("start"))
			if err != nil {
				return "", fmt.Errorf("start: %w", err)
			}
			end := start.Add(time.Hour)
			if s := args.Get("end"); s != "" {
				end, err = ParseTime(s)
				if err != nil {
					return "", fmt.Errorf("end: %w", err)
				}
			}
			ev, err := api.CreateEvent(ctx, args.Get("summary"), args.Get("description"), start, end)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Created event %q (%s ~ %s) [id: %s]", ev.Summary, ev.Start, ev.End, ev.ID), nil
		},
	})

	r.Register(Tool{
		Name:        "google_calendar_update_event",
		Description: "Updates an existing calendar event by id. Only supplied fields change.",
		Fields:      []string{"event_id", "summary", "start", "end", "description"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"event_id", "summary", "start", "end", "description"}, "event_id"); err != nil {
				return "", err
			}
			var start, end time.Time
			var err error
			if s := args.Get("start"); s != "" {
				start, err = ParseTime(s)
				if err != nil {
					return "", fmt.Errorf("start: %w", err)
				}
			}
			if s := args.Get("end"); s != "" {
				end, err = ParseTime(s)
				if err != nil {
					return "", fmt.Errorf("end: %w", err)
				}
			}
			ev, err := api.UpdateEvent(ctx, args.Get("event_id"), args.Get("summary"), args.Get("description"), start, end)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Updated event %q (%s ~ %s)", ev.Summary, ev.Start, ev.End), nil
		},
	})

	r.Register(Tool{
		Name:        "google_calendar_delete_event",
		Description: "Deletes a calendar event by id.",
		Fields:      []string{"event_id"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"event_id"}, "event_id"); err != nil {
				return "", err
			}
			if err := api.DeleteEvent(ctx, args.Get("event_id")); err != nil {
				return "", err
			}
			return fmt.Sprintf("Deleted event %s.", args.Get("event_id")), nil
		},
	})
}
