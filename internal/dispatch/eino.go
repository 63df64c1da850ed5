package dispatch

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// einoTool adapts one registry entry to Eino's tool contract. Every
// tool takes a single "input" string; the registry handles the shape
// parsing, so the model can pass JSON or comma-delimited fields the
// same way.
type einoTool struct {
	registry *Registry
	spec     Tool
}

// einoInput is the JSON argument envelope the model fills in.
type einoInput struct {
	Input string `json:"input"`
}

// EinoTools wraps every registered tool for use with an Eino agent.
func EinoTools(r *Registry) []tool.BaseTool {
	names := r.Names()
	out := make([]tool.BaseTool, 0, len(names))
	for _, name := range names {
		spec, _ := r.Lookup(name)
		out = append(out, &einoTool{registry: r, spec: spec})
	}
	return out
}

// Info returns the Eino tool metadata with the single-input schema.
func (t *einoTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	desc := t.spec.Description
	if len(t.spec.Fields) > 0 {
		desc += " Input fields, comma-separated: " + fieldUsage(t.spec.Fields) + "."
	}
	return &schema.ToolInfo{
		Name: t.spec.Name,
		Desc: desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"input": {
				Type:     schema.String,
				Desc:     "Tool arguments, either comma-separated positional fields or a JSON object.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun executes the tool. Dispatch failures come back as
// result strings, so the agent loop never sees an error from here
// unless the arguments envelope itself is unreadable.
func (t *einoTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input einoInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil || (input.Input == "" && argumentsInJSON != "" && argumentsInJSON != "{}") {
		// Some models skip the envelope and emit the argument object
		// or raw string directly. Let the registry sort the shape out.
		return t.registry.Execute(ctx, t.spec.Name, argumentsInJSON), nil
	}
	return t.registry.Execute(ctx, t.spec.Name, input.Input), nil
}

func fieldUsage(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}
