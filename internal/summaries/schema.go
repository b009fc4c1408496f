package summaries

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const payloadSchema = `{
  "type": "object",
  "required": [
    "company",
    "quarter",
    "financial_sentiment",
    "confidence_level",
    "key_highlights",
    "risks_and_concerns",
    "management_commitments",
    "guidance_outlook",
    "analyst_focus_areas"
  ],
  "properties": {
    "company": { "type": "string" },
    "quarter": { "type": "string" },
    "financial_sentiment": { "type": "string" },
    "confidence_level": { "type": "string" },
    "key_highlights": { "type": "array" },
    "risks_and_concerns": { "type": "array" },
    "management_commitments": { "type": "array" },
    "guidance_outlook": { "type": "array" },
    "analyst_focus_areas": { "type": "array" }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("summary.json", strings.NewReader(payloadSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("summary.json")
})

// checkShape validates the structural typing of a decoded payload.
func checkShape(payload any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	err = schema.Validate(payload)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Reason: err.Error()}
	}

	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		if _, ok := payload.(map[string]any); !ok {
			return &ValidationError{Reason: "summary payload must be an object"}
		}
		return &ValidationError{Reason: leaf.Message}
	}

	if i := strings.Index(field, "/"); i >= 0 {
		field = field[:i]
	}
	return &ValidationError{Field: field, Reason: fmt.Sprintf("%s: %s", field, leaf.Message)}
}
