package dispatch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Args holds resolved tool arguments keyed by field name.
type Args struct {
	values map[string]string
}

// ParseArgs normalises the three input shapes a tool call can arrive
// in: structured data (a map), a JSON object string, or a plain
// comma-delimited positional string. fields gives the declared
// parameter names in positional order; a positional input with more
// parts than declared fields is rejected with a usage hint.
func ParseArgs(raw any, fields []string) (Args, error) {
	switch v := raw.(type) {
	case nil:
		return Args{values: map[string]string{}}, nil
	case map[string]string:
		values := make(map[string]string, len(v))
		for k, val := range v {
			values[k] = strings.TrimSpace(val)
		}
		return Args{values: values}, nil
	case map[string]any:
		values := make(map[string]string, len(v))
		for k, val := range v {
			values[k] = strings.TrimSpace(stringifyArg(val))
		}
		return Args{values: values}, nil
	case string:
		return parseStringArgs(v, fields)
	default:
		return Args{}, fmt.Errorf("unsupported argument type %T", raw)
	}
}

func parseStringArgs(raw string, fields []string) (Args, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Args{values: map[string]string{}}, nil
	}

	if strings.HasPrefix(raw, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return Args{}, fmt.Errorf("invalid JSON argument: %v", err)
		}
		return ParseArgs(obj, fields)
	}

	parts := strings.Split(raw, ",")
	if len(parts) > len(fields) {
		return Args{}, fmt.Errorf("too many values (%d): expected %q", len(parts), strings.Join(fields, ","))
	}
	values := make(map[string]string, len(parts))
	for i, p := range parts {
		values[fields[i]] = strings.TrimSpace(p)
	}
	return Args{values: values}, nil
}

// stringifyArg renders a structured value as the string a handler
// expects. Whole numbers lose the JSON float suffix.
func stringifyArg(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// Get returns the value for a field, or "" when absent.
func (a Args) Get(name string) string {
	return a.values[name]
}

// GetInt parses a field as an integer, returning def when absent or
// unparsable.
func (a Args) GetInt(name string, def int) int {
	s := a.values[name]
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Require checks that every named field is present and non-empty.
// The error names the full expected positional form so the agent can
// retry with a corrected call.
func (a Args) Require(fields []string, required ...string) error {
	for _, name := range required {
		if a.values[name] == "" {
			return fmt.Errorf("missing %q: expected %q", name, strings.Join(fields, ","))
		}
	}
	return nil
}
