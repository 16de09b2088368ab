package decision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"taskapp-backend/internal/tasks"
)

const maxReasonLen = 1000

var errEmptyOutput = errors.New("empty advisory output")

// Validator checks raw advisory text against the decision schema. Leading and
// trailing whitespace is trimmed; nothing else is repaired.
type Validator struct {
	schema *jsonschema.Schema
}

func decisionSchema() map[string]any {
	states := []any{}
	for _, s := range tasks.States() {
		states = append(states, string(s))
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"required":             []any{"nextState", "reason"},
		"additionalProperties": false,
		"properties": map[string]any{
			"nextState": map[string]any{"enum": states},
			"reason":    map[string]any{"type": "string", "maxLength": maxReasonLen},
		},
	}
}

func NewValidator() (*Validator, error) {
	raw, err := json.Marshal(decisionSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal decision schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("unmarshal decision schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("decision.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("decision.json")
	if err != nil {
		return nil, fmt.Errorf("compile decision schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Parse returns the decision carried by raw, or an error if raw is not
// exactly one schema-conforming JSON object.
func (v *Validator) Parse(raw string) (Decision, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Decision{}, errEmptyOutput
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return Decision{}, fmt.Errorf("advisory output is not json: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return Decision{}, fmt.Errorf("advisory output rejected: %w", err)
	}

	var d Decision
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	return d, nil
}
