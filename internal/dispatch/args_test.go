package dispatch

import (
	"strings"
	"testing"
)

// ── shape handling ──

func TestParseArgs_Shapes(t *testing.T) {
	t.Parallel()

	fields := []string{"channel", "text"}

	tests := []struct {
		name string
		raw  any
		want map[string]string
	}{
		{
			name: "structured map",
			raw:  map[string]any{"channel": "general", "text": "hello"},
			want: map[string]string{"channel": "general", "text": "hello"},
		},
		{
			name: "json string",
			raw:  `{"channel": "general", "text": "hello"}`,
			want: map[string]string{"channel": "general", "text": "hello"},
		},
		{
			name: "comma delimited",
			raw:  "general, hello",
			want: map[string]string{"channel": "general", "text": "hello"},
		},
		{
			name: "partial positional",
			raw:  "general",
			want: map[string]string{"channel": "general"},
		},
		{
			name: "empty string",
			raw:  "",
			want: map[string]string{},
		},
		{
			name: "nil",
			raw:  nil,
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args, err := ParseArgs(tt.raw, fields)
			if err != nil {
				t.Fatalf("ParseArgs failed: %v", err)
			}
			for k, v := range tt.want {
				if got := args.Get(k); got != v {
					t.Errorf("Get(%q) = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestParseArgs_TooManyPositional(t *testing.T) {
	t.Parallel()

	_, err := ParseArgs("a, b, c", []string{"channel", "text"})
	if err == nil {
		t.Fatal("expected arity error")
	}
	if !strings.Contains(err.Error(), `"channel,text"`) {
		t.Errorf("error should name the expected fields, got %v", err)
	}
}

func TestParseArgs_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseArgs(`{"channel": `, []string{"channel", "text"})
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("expected invalid JSON error, got %v", err)
	}
}

func TestParseArgs_NumericValues(t *testing.T) {
	t.Parallel()

	args, err := ParseArgs(map[string]any{"limit": float64(30)}, []string{"limit"})
	if err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if got := args.GetInt("limit", 0); got != 30 {
		t.Errorf("GetInt = %d, want 30", got)
	}
}

func TestArgs_Require(t *testing.T) {
	t.Parallel()

	fields := []string{"channel", "text"}
	args, _ := ParseArgs("general", fields)

	if err := args.Require(fields, "channel"); err != nil {
		t.Errorf("channel is present, got %v", err)
	}
	err := args.Require(fields, "channel", "text")
	if err == nil {
		t.Fatal("expected missing-field error")
	}
	if !strings.Contains(err.Error(), `"text"`) || !strings.Contains(err.Error(), `"channel,text"`) {
		t.Errorf("error should name the field and usage, got %v", err)
	}
}

func TestArgs_GetIntDefault(t *testing.T) {
	t.Parallel()

	args, _ := ParseArgs("", []string{"limit"})
	if got := args.GetInt("limit", 20); got != 20 {
		t.Errorf("GetInt default = %d, want 20", got)
	}
	args, _ = ParseArgs("not-a-number", []string{"limit"})
	if got := args.GetInt("limit", 20); got != 20 {
		t.Errorf("GetInt unparsable = %d, want 20", got)
	}
}
