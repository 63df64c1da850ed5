package dispatch

import (
	"testing"
	"time"
)

func TestDefaultRange(t *testing.T) {
	t.Parallel()

	// 2026-03-10 01:30 UTC is already 10:30 on the 10th in KST.
	now := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	start, end := DefaultRange(now)

	wantStart := time.Date(2026, 3, 10, 0, 0, 0, 0, KST)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.AddDate(0, 0, 7)) {
		t.Errorf("end = %v, want +7d", end)
	}
}

func TestDefaultRange_CrossesDateLine(t *testing.T) {
	t.Parallel()

	// 16:00 UTC is 01:00 the NEXT day in KST; the default window must
	// anchor on the KST date, not the UTC one.
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	start, _ := DefaultRange(now)

	if start.Day() != 11 {
		t.Errorf("start day = %d, want 11 (KST date)", start.Day())
	}
	if start.Hour() != 0 {
		t.Errorf("start hour = %d, want 0", start.Hour())
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2026-03-10T15:00:00+09:00", want: time.Date(2026, 3, 10, 15, 0, 0, 0, KST)},
		{in: "2026-03-10 15:00", want: time.Date(2026, 3, 10, 15, 0, 0, 0, KST)},
		{in: "2026-03-10", want: time.Date(2026, 3, 10, 0, 0, 0, 0, KST)},
		{in: "next tuesday", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTime(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTime(%q) failed: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, KST)

	// ── both empty: default window ──
	start, end, err := ResolveRange("", "", now)
	if err != nil {
		t.Fatalf("ResolveRange failed: %v", err)
	}
	if start.Hour() != 0 || start.Day() != 10 {
		t.Errorf("default start = %v, want today 00:00 KST", start)
	}
	if !end.Equal(start.AddDate(0, 0, 7)) {
		t.Errorf("default end = %v, want start+7d", end)
	}

	// ── start only: end extends seven days ──
	start, end, err = ResolveRange("2026-04-01", "", now)
	if err != nil {
		t.Fatalf("ResolveRange failed: %v", err)
	}
	if !end.Equal(start.AddDate(0, 0, 7)) {
		t.Errorf("end = %v, want start+7d", end)
	}

	// ── inverted range rejected ──
	if _, _, err := ResolveRange("2026-04-02", "2026-04-01", now); err == nil {
		t.Error("expected error for end before start")
	}
}
