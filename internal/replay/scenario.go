// Package replay runs scripted conformance scenarios against an in-process
// dispatcher: a scenario is a transcript of JSON-RPC requests with JSONPath
// assertions over the responses.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Scenario is one replayable conformance transcript
type Scenario struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// Step sends one message to the endpoint. Either Raw carries a complete
// protocol line (possibly malformed on purpose), or Method/ID/Params describe
// a structured request.
type Step struct {
	Name   string                 `yaml:"name,omitempty" json:"name,omitempty"`
	Raw    string                 `yaml:"raw,omitempty" json:"raw,omitempty"`
	Method string                 `yaml:"method,omitempty" json:"method,omitempty"`
	ID     *int64                 `yaml:"id,omitempty" json:"id,omitempty"`
	Params map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`

	// NoResponse asserts the step is a notification: the endpoint must
	// write nothing for it.
	NoResponse bool `yaml:"no_response,omitempty" json:"no_response,omitempty"`

	Expect []Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expectation is one assertion over a response document, addressed by
// JSONPath (e.g. $.result.content[0].text).
type Expectation struct {
	Path string `yaml:"path" json:"path"`

	// Equals compares the value at Path after JSON normalization, so a
	// YAML integer matches a JSON number.
	Equals interface{} `yaml:"equals,omitempty" json:"equals,omitempty"`

	// Contains does a substring check on the stringified value.
	Contains string `yaml:"contains,omitempty" json:"contains,omitempty"`

	// Exists asserts presence (true) or absence (false) of the path.
	Exists *bool `yaml:"exists,omitempty" json:"exists,omitempty"`

	// Min is an inclusive lower bound, Max an exclusive upper bound.
	// Numeric strings (tool result text) are coerced before comparing.
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// LoadFile reads and validates a scenario file
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes scenario YAML and runs both validation phases: JSON Schema
// over the document shape, then the domain rules the schema cannot express.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateSchema(&sc); err != nil {
		return nil, err
	}
	if err := validateDomain(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// validateSchema checks the scenario against the generated JSON Schema
func validateSchema(sc *Scenario) error {
	schemaJSON, err := GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate scenario schema: %w", err)
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal scenario schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource(scenarioSchemaID, schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(scenarioSchemaID)
	if err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal scenario for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal scenario for validation: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("scenario does not match schema: %w", err)
	}
	return nil
}

// validateDomain enforces the rules the schema cannot express
func validateDomain(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	for i, step := range sc.Steps {
		if step.Raw == "" && step.Method == "" {
			return fmt.Errorf("steps[%d]: either raw or method is required", i)
		}
		if step.Raw != "" && step.Method != "" {
			return fmt.Errorf("steps[%d]: raw and method are mutually exclusive", i)
		}
		if step.NoResponse && len(step.Expect) > 0 {
			return fmt.Errorf("steps[%d]: no_response steps cannot carry expectations", i)
		}
		for j, exp := range step.Expect {
			if exp.Path == "" {
				return fmt.Errorf("steps[%d].expect[%d]: path is required", i, j)
			}
			if exp.Min != nil && exp.Max != nil && *exp.Min >= *exp.Max {
				return fmt.Errorf("steps[%d].expect[%d]: min must be below max", i, j)
			}
		}
	}
	return nil
}
