package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/oliveagle/jsonpath"

	"mcp-testbed/internal/mcp/protocol"
	"mcp-testbed/internal/mcp/server"
	"mcp-testbed/internal/mcp/tools"
)

// Runner replays scenarios against an in-process dispatcher built from the
// server configuration. Every scenario gets a fresh dispatcher so id
// sequences start at 1, exactly like a fresh stream.
type Runner struct {
	cfg    *server.Config
	logger *log.Logger
}

// NewRunner creates a runner for the given server configuration
func NewRunner(cfg *server.Config, logger *log.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Report collects the outcome of one scenario run
type Report struct {
	Scenario string
	Steps    []StepResult
}

// StepResult is the outcome of a single step
type StepResult struct {
	Name     string
	Response json.RawMessage // nil when the endpoint emitted nothing
	Failures []string
}

// Passed reports whether every step satisfied its expectations
func (r *Report) Passed() bool {
	for _, s := range r.Steps {
		if len(s.Failures) > 0 {
			return false
		}
	}
	return true
}

// FailureCount returns the number of failed steps
func (r *Report) FailureCount() int {
	count := 0
	for _, s := range r.Steps {
		if len(s.Failures) > 0 {
			count++
		}
	}
	return count
}

// Run replays one scenario and returns its report
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	registry := tools.NewRegistry()
	if err := tools.RegisterBuiltin(registry, r.cfg.DisabledTools); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	registry.SetStrict(r.cfg.StrictArguments)
	dispatcher := server.NewDispatcher(r.cfg, registry, r.logger)

	report := &Report{Scenario: sc.Name}
	for i, step := range sc.Steps {
		result := runStep(ctx, dispatcher, i, step)
		report.Steps = append(report.Steps, result)
	}
	return report, nil
}

func runStep(ctx context.Context, dispatcher *server.Dispatcher, index int, step Step) StepResult {
	result := StepResult{Name: stepName(index, step)}

	line, err := requestLine(step)
	if err != nil {
		result.Failures = append(result.Failures, err.Error())
		return result
	}

	// The line goes through the same codec the session loop uses, so raw
	// steps can exercise the malformed-input degradation path.
	req, _ := protocol.DecodeRequest(line)
	resp := dispatcher.Dispatch(ctx, req)

	if resp == nil {
		if !step.NoResponse {
			result.Failures = append(result.Failures, "expected a response, endpoint emitted nothing")
		}
		return result
	}
	if step.NoResponse {
		result.Failures = append(result.Failures, "expected no response, endpoint emitted one")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		result.Failures = append(result.Failures, fmt.Sprintf("marshal response: %v", err))
		return result
	}
	result.Response = data

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Failures = append(result.Failures, fmt.Sprintf("unmarshal response: %v", err))
		return result
	}

	for _, exp := range step.Expect {
		if failure := checkExpectation(doc, exp); failure != "" {
			result.Failures = append(result.Failures, failure)
		}
	}
	return result
}

func stepName(index int, step Step) string {
	if step.Name != "" {
		return step.Name
	}
	if step.Method != "" {
		return fmt.Sprintf("step %d (%s)", index+1, step.Method)
	}
	return fmt.Sprintf("step %d (raw)", index+1)
}

// requestLine renders the step as one protocol line
func requestLine(step Step) ([]byte, error) {
	if step.Raw != "" {
		return []byte(step.Raw), nil
	}

	msg := map[string]interface{}{
		"jsonrpc": protocol.JSONRPCVersion,
		"method":  step.Method,
	}
	if step.ID != nil {
		msg["id"] = *step.ID
	}
	if step.Params != nil {
		msg["params"] = step.Params
	}

	line, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal step request: %w", err)
	}
	return line, nil
}

// checkExpectation evaluates one assertion; an empty return means it held
func checkExpectation(doc interface{}, exp Expectation) string {
	value, err := jsonpath.JsonPathLookup(doc, exp.Path)

	if exp.Exists != nil {
		if *exp.Exists && err != nil {
			return fmt.Sprintf("%s: expected path to exist: %v", exp.Path, err)
		}
		if !*exp.Exists {
			if err == nil {
				return fmt.Sprintf("%s: expected path to be absent, found %v", exp.Path, value)
			}
			return ""
		}
	} else if err != nil {
		return fmt.Sprintf("%s: %v", exp.Path, err)
	}

	if exp.Equals != nil && !jsonEqual(value, exp.Equals) {
		return fmt.Sprintf("%s: got %v, want %v", exp.Path, value, exp.Equals)
	}

	if exp.Contains != "" {
		text := stringify(value)
		if !strings.Contains(text, exp.Contains) {
			return fmt.Sprintf("%s: %q does not contain %q", exp.Path, text, exp.Contains)
		}
	}

	if exp.Min != nil || exp.Max != nil {
		num, ok := asNumber(value)
		if !ok {
			return fmt.Sprintf("%s: %v is not numeric", exp.Path, value)
		}
		if exp.Min != nil && num < *exp.Min {
			return fmt.Sprintf("%s: %v is below minimum %v", exp.Path, num, *exp.Min)
		}
		if exp.Max != nil && num >= *exp.Max {
			return fmt.Sprintf("%s: %v is not below exclusive maximum %v", exp.Path, num, *exp.Max)
		}
	}

	return ""
}

// jsonEqual compares two values after JSON normalization, so a YAML integer
// equals the corresponding JSON float.
func jsonEqual(a, b interface{}) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}

func stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// asNumber coerces floats and numeric strings. Tool result text carries
// numbers as decimal strings.
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
