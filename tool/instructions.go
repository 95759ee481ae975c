package tool

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InstructionsBlock renders the catalog as a textual instructions block for
// injection into a system message. It lists each tool with its parameter
// schema and spells out the exact tagged invocation syntax the parser
// recognizes, so models without native function calling can still request
// tools.
func (c *Catalog) InstructionsBlock() string {
	if c.Len() == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("You have access to the following tools:\n\n")
	for _, def := range c.Definitions() {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
		for _, p := range def.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "    - %s (%s, %s): %s\n", p.Name, p.Type, req, p.Description)
		}
	}
	b.WriteString("\nTo use a tool, include a block in your response with exactly this format:\n\n")
	b.WriteString("<tool_use>{\"tool\": \"tool_name\", \"arguments\": {\"param\": \"value\"}}</tool_use>\n\n")
	b.WriteString("You may request multiple tools in one response. The results will be provided to you before you give your final answer.")
	return b.String()
}

// SchemaJSON renders all definitions with their JSON schemas as one JSON
// document. Useful for diagnostics and for clients that want the raw export.
func (c *Catalog) SchemaJSON() (string, error) {
	type entry struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	}
	entries := make([]entry, 0, c.Len())
	for _, def := range c.Definitions() {
		entries = append(entries, entry{Name: def.Name, Description: def.Description, Parameters: def.JSONSchema()})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool schemas: %w", err)
	}
	return string(data), nil
}
