package google

import (
	"testing"

	"google.golang.org/api/calendar/v3"
)

func TestEscapeDriveQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "quarterly report", "quarterly report"},
		{"single quote", "Dana's notes", `Dana\'s notes`},
		{"backslash", `a\b`, `a\\b`},
		{"backslash then quote", `a\'b`, `a\\\'b`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := escapeDriveQuery(tt.in); got != tt.want {
				t.Errorf("escapeDriveQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToEvent(t *testing.T) {
	t.Parallel()

	timed := toEvent(&calendar.Event{
		Id:      "ev1",
		Summary: "standup",
		Start:   &calendar.EventDateTime{DateTime: "2026-08-31T10:00:00+09:00"},
		End:     &calendar.EventDateTime{DateTime: "2026-08-31T10:30:00+09:00"},
	})
	if timed.Start != "2026-08-31T10:00:00+09:00" {
		t.Errorf("timed event start = %q", timed.Start)
	}

	// All-day events carry only a date; it has to be surfaced instead of
	// an empty string.
	allDay := toEvent(&calendar.Event{
		Id:    "ev2",
		Start: &calendar.EventDateTime{Date: "2026-09-01"},
		End:   &calendar.EventDateTime{Date: "2026-09-02"},
	})
	if allDay.Start != "2026-09-01" || allDay.End != "2026-09-02" {
		t.Errorf("all-day event times = %q / %q", allDay.Start, allDay.End)
	}

	// Events without times (cancelled instances) must not panic.
	bare := toEvent(&calendar.Event{Id: "ev3"})
	if bare.Start != "" || bare.End != "" {
		t.Errorf("bare event times = %q / %q", bare.Start, bare.End)
	}
}
