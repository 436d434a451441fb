package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/catalog"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func snapshotOf(items map[string]int, flag bool) cart.Snapshot {
	snap := cart.Snapshot{Items: []cart.ItemView{}, AutoBundled: flag}
	for _, id := range []string{"sg1", "ln1", "bd1"} {
		if q, ok := items[id]; ok {
			snap.Items = append(snap.Items, cart.ItemView{ID: id, Quantity: q})
		}
	}
	return snap
}

func testTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Action: "add:sg1", Snapshot: snapshotOf(map[string]int{"sg1": 1}, false)},
		{Seq: 2, Action: "add:ln1", Bundled: true, Snapshot: snapshotOf(map[string]int{"bd1": 1}, true)},
		{Seq: 3, Action: "clear", Snapshot: snapshotOf(map[string]int{"bd1": 1}, false)},
		{Seq: 4, Action: "add:sg1", Snapshot: snapshotOf(map[string]int{"sg1": 1, "bd1": 1}, false)},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := testTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "add:ln1"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "dismiss"}), "aliases normalize")

	err := assertTraceContains(trace, Assertion{Action: "remove:sg1"})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, AssertTraceContains, aerr.Type)
	assert.Contains(t, aerr.Error(), "[2] add:ln1")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := testTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"add:sg1", "clear"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"add:ln1", "add sg1"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"clear", "add:ln1"}})
	assert.ErrorContains(t, err, "stuck at add:ln1")
}

func TestAssertTraceCount(t *testing.T) {
	trace := testTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "add:sg1", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "dec:bd1", Count: 0}))
	assert.ErrorContains(t, assertTraceCount(trace, Assertion{Action: "add:sg1", Count: 1}), "2 time(s)")
	assert.Error(t, assertTraceCount(trace, Assertion{Action: "bogus", Count: 1}))
}

func TestAssertBundleCount(t *testing.T) {
	trace := testTrace()

	assert.NoError(t, assertBundleCount(trace, Assertion{Count: 1}))
	assert.ErrorContains(t, assertBundleCount(trace, Assertion{Count: 0}), "1 conversion(s)")
}

func TestAssertFinalItemsAndFlag(t *testing.T) {
	result := &Result{Trace: testTrace()}

	assert.NoError(t, assertFinalItems(result, Assertion{Items: map[string]int{"sg1": 1, "bd1": 1}}))
	err := assertFinalItems(result, Assertion{Items: map[string]int{"bd1": 1}})
	assert.ErrorContains(t, err, "-want +got")

	assert.NoError(t, assertFinalFlag(result, Assertion{AutoBundled: boolPtr(false)}))
	assert.Error(t, assertFinalFlag(result, Assertion{AutoBundled: boolPtr(true)}))
}

func TestAssertFinalItems_EmptyCart(t *testing.T) {
	result := &Result{Trace: []TraceEvent{{Seq: 1, Action: "clear", Snapshot: snapshotOf(nil, false)}}}
	assert.NoError(t, assertFinalItems(result, Assertion{Items: map[string]int{}}))
}

func TestAssertFinalTotals(t *testing.T) {
	snap := snapshotOf(map[string]int{"bd1": 1}, false)
	snap.Totals = cart.TotalsView{Subtotal: "100.00", Shipping: "0.00", Tax: "8.25", Total: "108.25"}
	result := &Result{Trace: []TraceEvent{{Seq: 1, Action: "add:bd1", Snapshot: snap}}}

	assert.NoError(t, assertFinalTotals(result, Assertion{Totals: map[string]string{"tax": "8.25"}}))
	assert.Error(t, assertFinalTotals(result, Assertion{Totals: map[string]string{"total": "100.00"}}))
}

func TestAssertInvariants(t *testing.T) {
	cat := catalog.Default()

	assert.NoError(t, assertInvariants(testTrace(), cat))

	paired := []TraceEvent{{Seq: 1, Action: "add:ln1", Snapshot: snapshotOf(map[string]int{"sg1": 1, "ln1": 1}, false)}}
	assert.ErrorContains(t, assertInvariants(paired, cat), "no unconverted sg1/ln1 pair")

	zero := []TraceEvent{{Seq: 1, Action: "dec:sg1", Snapshot: snapshotOf(map[string]int{"sg1": 0}, false)}}
	assert.ErrorContains(t, assertInvariants(zero, cat), "sg1 has quantity 0")
}

func TestCheckExpect(t *testing.T) {
	snap := snapshotOf(map[string]int{"bd1": 1}, true)
	snap.Units = 1
	snap.Totals = cart.TotalsView{Subtotal: "100.00", Shipping: "0.00", Tax: "8.25", Total: "108.25"}
	snap.RemainingForFreeShipping = "0.00"
	snap.FreeShippingProgress = 100
	event := TraceEvent{Seq: 2, Action: "add:ln1", Bundled: true, Snapshot: snap}

	ok := &ExpectClause{
		Items:                    map[string]int{"bd1": 1},
		AutoBundled:              boolPtr(true),
		Bundled:                  boolPtr(true),
		Totals:                   map[string]string{"subtotal": "100.00", "total": "108.25"},
		Units:                    intPtr(1),
		RemainingForFreeShipping: "0.00",
		FreeShippingProgress:     intPtr(100),
	}
	assert.Empty(t, checkExpect(ok, event))

	bad := &ExpectClause{
		Empty:                    true,
		AutoBundled:              boolPtr(false),
		Bundled:                  boolPtr(false),
		Units:                    intPtr(2),
		RemainingForFreeShipping: "15.00",
		FreeShippingProgress:     intPtr(85),
	}
	assert.Len(t, checkExpect(bad, event), 6)
}

func TestEvaluateAssertions_Prefixes(t *testing.T) {
	result := &Result{Trace: testTrace()}
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertBundleCount, Count: 1},
		{Type: AssertTraceCount, Action: "clear", Count: 5},
	}, catalog.Default())

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "assertions[1]:")
}
