package replay

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// scenarioSchemaID identifies the scenario schema for generation and for
// compiler resolution during validation.
const scenarioSchemaID = "urn:mcp-testbed:schemas:scenario-v1"

// GenerateSchema produces a JSON Schema Draft 2020-12 document for scenario
// files, reflected from the Go Scenario struct.
func GenerateSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Scenario{})
	s.ID = scenarioSchemaID
	s.Title = "MCP testbed replay scenario"
	s.Description = "Schema for replay scenario YAML documents: a transcript of JSON-RPC requests with JSONPath assertions over the responses"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
