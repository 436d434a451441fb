package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/solaris/internal/cart"
)

// Scenario defines a cart scenario.
// Scenarios execute a sequence of consumer actions and assert on each
// resulting snapshot and on the run as a whole.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog optionally replaces the built-in catalog with a CUE file.
	// Relative paths resolve against the scenario file's directory.
	Catalog string `yaml:"catalog,omitempty"`

	// SessionID fixes the session id. Defaults to "scenario-<name>".
	SessionID string `yaml:"session_id,omitempty"`

	// Flow is the ordered list of actions.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the whole trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one consumer action and, optionally, what it must produce.
type FlowStep struct {
	// Do is the action text, e.g. "add:sg1" or "clear".
	Do string `yaml:"do"`

	// Expect validates the snapshot after this step. Nil skips validation.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies an expected snapshot. Unset fields are not
// checked; Items, when set, must match exactly.
type ExpectClause struct {
	Items                    map[string]int    `yaml:"items,omitempty"`
	Empty                    bool              `yaml:"empty,omitempty"`
	AutoBundled              *bool             `yaml:"auto_bundled,omitempty"`
	Bundled                  *bool             `yaml:"bundled,omitempty"`
	Totals                   map[string]string `yaml:"totals,omitempty"`
	Units                    *int              `yaml:"units,omitempty"`
	RemainingForFreeShipping string            `yaml:"remaining_for_free_shipping,omitempty"`
	FreeShippingProgress     *int              `yaml:"free_shipping_progress,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is the action text (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Actions is the expected order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number of occurrences (trace_count, bundle_count).
	Count int `yaml:"count,omitempty"`

	// Items is the expected final cart (final_items).
	Items map[string]int `yaml:"items,omitempty"`

	// Totals is the expected final totals subset (final_totals).
	Totals map[string]string `yaml:"totals,omitempty"`

	// AutoBundled is the expected final flag (final_flag).
	AutoBundled *bool `yaml:"auto_bundled,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertBundleCount   = "bundle_count"
	AssertFinalItems    = "final_items"
	AssertFinalTotals   = "final_totals"
	AssertFinalFlag     = "final_flag"
	AssertInvariants    = "invariants"
)

// totalsKeys are the figures totals maps may name.
var totalsKeys = map[string]bool{"subtotal": true, "shipping": true, "tax": true, "total": true}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: catalog file not found: %s", scenario.Catalog)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation
// (catches typos like "assertion:" vs "assertions:").
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Do == "" {
			return fmt.Errorf("flow[%d]: do is required", i)
		}
		if _, err := cart.ParseAction(step.Do); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		if step.Expect != nil {
			if step.Expect.Empty && len(step.Expect.Items) > 0 {
				return fmt.Errorf("flow[%d].expect: empty and items are exclusive", i)
			}
			if err := validateTotals(step.Expect.Totals); err != nil {
				return fmt.Errorf("flow[%d].expect: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateTotals(totals map[string]string) error {
	for k := range totals {
		if !totalsKeys[k] {
			return fmt.Errorf("unknown totals field %q", k)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertBundleCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for bundle_count", index)
		}
	case AssertFinalItems:
		if a.Items == nil {
			return fmt.Errorf("assertions[%d]: items is required for final_items (use {} for an empty cart)", index)
		}
	case AssertFinalTotals:
		if len(a.Totals) == 0 {
			return fmt.Errorf("assertions[%d]: totals is required for final_totals", index)
		}
		if err := validateTotals(a.Totals); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertFinalFlag:
		if a.AutoBundled == nil {
			return fmt.Errorf("assertions[%d]: auto_bundled is required for final_flag", index)
		}
	case AssertInvariants:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
