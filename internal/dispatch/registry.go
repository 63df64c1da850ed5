// Package dispatch routes named tool calls from the agent loop to the
// SaaS connectors and the retrieval service. Every failure is folded
// into a descriptive result string so a bad tool call can never abort
// an agent turn.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/caesar-ai/caesar-go/internal/logging"
)

// servicePrefixes is the explicit table of known service prefixes,
// checked longest first. Tool names are "{service}_{action}".
var servicePrefixes = []string{
	"google_calendar",
	"google_drive",
	"slack",
	"notion",
	"rag",
}

// SplitName decomposes a tool name into its service prefix and action
// suffix. Unknown prefixes yield service "" and the whole name as the
// action.
func SplitName(toolName string) (service, action string) {
	for _, p := range servicePrefixes {
		if strings.HasPrefix(toolName, p+"_") {
			return p, strings.TrimPrefix(toolName, p+"_")
		}
	}
	return "", toolName
}

// Handler executes one tool call. The returned string is shown to the
// model; errors are translated by the registry, never propagated.
type Handler func(ctx context.Context, args Args) (string, error)

// Tool describes one registered tool.
type Tool struct {
	// Name is the full tool name, e.g. "slack_send_message".
	Name string

	// Description is the LLM-facing summary of what the tool does.
	Description string

	// Fields lists parameter names in positional order. Comma-delimited
	// input is mapped onto these left to right.
	Fields []string

	// Handler performs the call.
	Handler Handler
}

// Registry maps tool names to handlers.
type Registry struct {
	tools map[string]Tool
	names []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Re-registering a name replaces the previous
// entry.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.names = append(r.names, t.Name)
		sort.Strings(r.names)
	}
	r.tools[t.Name] = t
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Execute runs the named tool against a raw argument in any of the
// accepted shapes. It never panics and never returns a Go error to the
// caller: all failures come back as "Error: ..." strings the agent can
// read and react to.
func (r *Registry) Execute(ctx context.Context, toolName string, raw any) (result string) {
	log := logging.FromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("tool panicked", "tool", toolName, "panic", rec)
			result = fmt.Sprintf("Error: tool '%s' failed internally: %v", toolName, rec)
		}
	}()

	tool, ok := r.tools[toolName]
	if !ok {
		return fmt.Sprintf("Error: tool '%s' not found. Available tools: %s", toolName, strings.Join(r.Names(), ", "))
	}

	args, err := ParseArgs(raw, tool.Fields)
	if err != nil {
		return fmt.Sprintf("Error: %s: %v", toolName, err)
	}

	service, action := SplitName(toolName)
	log.Debug("executing tool", "service", service, "action", action)

	out, err := tool.Handler(ctx, args)
	if err != nil {
		log.Warn("tool call failed", "tool", toolName, "error", err)
		return fmt.Sprintf("Error: %s: %v", toolName, err)
	}
	return out
}
