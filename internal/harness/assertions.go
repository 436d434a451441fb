package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/catalog"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %v\n", event.Seq, event.Action, event.Snapshot.Quantities())
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, cat *catalog.Catalog) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a, cat); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, cat *catalog.Catalog) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertBundleCount:
		return assertBundleCount(result.Trace, a)
	case AssertFinalItems:
		return assertFinalItems(result, a)
	case AssertFinalTotals:
		return assertFinalTotals(result, a)
	case AssertFinalFlag:
		return assertFinalFlag(result, a)
	case AssertInvariants:
		return assertInvariants(result.Trace, cat)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// normalizeAction lets assertions spell actions any way ParseAction reads.
func normalizeAction(text string) (string, error) {
	a, err := cart.ParseAction(text)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	want, err := normalizeAction(assertion.Action)
	if err != nil {
		return err
	}
	for _, event := range trace {
		if event.Action == want {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s", want),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that actions appear in the specified order.
// Actions don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	want := make([]string, len(assertion.Actions))
	for i, text := range assertion.Actions {
		a, err := normalizeAction(text)
		if err != nil {
			return err
		}
		want[i] = a
	}

	for _, event := range trace {
		if next < len(want) && event.Action == want[next] {
			next++
		}
	}
	if next == len(want) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("actions in order %v", want),
		Actual:   fmt.Sprintf("matched %d of %d, stuck at %s", next, len(want), want[next]),
		Trace:    trace,
	}
}

func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	want, err := normalizeAction(assertion.Action)
	if err != nil {
		return err
	}
	count := 0
	for _, event := range trace {
		if event.Action == want {
			count++
		}
	}
	if count == assertion.Count {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s exactly %d time(s)", want, assertion.Count),
		Actual:   fmt.Sprintf("%d time(s)", count),
		Trace:    trace,
	}
}

func assertBundleCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Bundled {
			count++
		}
	}
	if count == assertion.Count {
		return nil
	}

	return &AssertionError{
		Type:     AssertBundleCount,
		Expected: fmt.Sprintf("%d conversion(s)", assertion.Count),
		Actual:   fmt.Sprintf("%d conversion(s)", count),
		Trace:    trace,
	}
}

func assertFinalItems(result *Result, assertion Assertion) error {
	got := result.Final().Quantities()
	if diff := cmp.Diff(assertion.Items, got, cmpopts.EquateEmpty()); diff != "" {
		return &AssertionError{
			Type:     AssertFinalItems,
			Expected: fmt.Sprintf("%v", assertion.Items),
			Actual:   fmt.Sprintf("%v (-want +got):\n%s", got, diff),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalTotals(result *Result, assertion Assertion) error {
	got := totalsSubset(result.Final().Totals, assertion.Totals)
	if diff := cmp.Diff(assertion.Totals, got); diff != "" {
		return &AssertionError{
			Type:     AssertFinalTotals,
			Expected: fmt.Sprintf("%v", assertion.Totals),
			Actual:   fmt.Sprintf("%v (-want +got):\n%s", got, diff),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalFlag(result *Result, assertion Assertion) error {
	got := result.Final().AutoBundled
	if got == *assertion.AutoBundled {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalFlag,
		Expected: fmt.Sprintf("auto_bundled=%t", *assertion.AutoBundled),
		Actual:   fmt.Sprintf("auto_bundled=%t", got),
		Trace:    result.Trace,
	}
}

// assertInvariants checks every step: no line at zero or below, and no
// primary/secondary pair left unconverted.
func assertInvariants(trace []TraceEvent, cat *catalog.Catalog) error {
	primary, secondary := cat.Primary().ID, cat.Secondary().ID
	for _, event := range trace {
		for _, it := range event.Snapshot.Items {
			if it.Quantity <= 0 {
				return &AssertionError{
					Type:     AssertInvariants,
					Expected: "every line quantity > 0",
					Actual:   fmt.Sprintf("seq %d: %s has quantity %d", event.Seq, it.ID, it.Quantity),
					Trace:    trace,
				}
			}
		}
		q := event.Snapshot.Quantities()
		if q[primary] > 0 && q[secondary] > 0 {
			return &AssertionError{
				Type:     AssertInvariants,
				Expected: fmt.Sprintf("no unconverted %s/%s pair", primary, secondary),
				Actual:   fmt.Sprintf("seq %d: %v", event.Seq, q),
				Trace:    trace,
			}
		}
	}
	return nil
}

// checkExpect compares one step's snapshot with its expect clause.
func checkExpect(want *ExpectClause, event TraceEvent) []string {
	var errs []string
	snap := event.Snapshot

	if want.Items != nil {
		if diff := cmp.Diff(want.Items, snap.Quantities(), cmpopts.EquateEmpty()); diff != "" {
			errs = append(errs, fmt.Sprintf("items mismatch (-want +got):\n%s", diff))
		}
	}
	if want.Empty && len(snap.Items) > 0 {
		errs = append(errs, fmt.Sprintf("expected empty cart, got %v", snap.Quantities()))
	}
	if want.AutoBundled != nil && *want.AutoBundled != snap.AutoBundled {
		errs = append(errs, fmt.Sprintf("auto_bundled: expected %t, got %t", *want.AutoBundled, snap.AutoBundled))
	}
	if want.Bundled != nil && *want.Bundled != event.Bundled {
		errs = append(errs, fmt.Sprintf("bundled: expected %t, got %t", *want.Bundled, event.Bundled))
	}
	if len(want.Totals) > 0 {
		got := totalsSubset(snap.Totals, want.Totals)
		if diff := cmp.Diff(want.Totals, got); diff != "" {
			errs = append(errs, fmt.Sprintf("totals mismatch (-want +got):\n%s", diff))
		}
	}
	if want.Units != nil && *want.Units != snap.Units {
		errs = append(errs, fmt.Sprintf("units: expected %d, got %d", *want.Units, snap.Units))
	}
	if want.RemainingForFreeShipping != "" && want.RemainingForFreeShipping != snap.RemainingForFreeShipping {
		errs = append(errs, fmt.Sprintf("remaining_for_free_shipping: expected %s, got %s",
			want.RemainingForFreeShipping, snap.RemainingForFreeShipping))
	}
	if want.FreeShippingProgress != nil && *want.FreeShippingProgress != snap.FreeShippingProgress {
		errs = append(errs, fmt.Sprintf("free_shipping_progress: expected %d, got %d",
			*want.FreeShippingProgress, snap.FreeShippingProgress))
	}

	return errs
}

// totalsSubset picks the figures named in want.
func totalsSubset(t cart.TotalsView, want map[string]string) map[string]string {
	all := map[string]string{
		"subtotal": t.Subtotal,
		"shipping": t.Shipping,
		"tax":      t.Tax,
		"total":    t.Total,
	}
	got := make(map[string]string, len(want))
	for k := range want {
		got[k] = all[k]
	}
	return got
}
