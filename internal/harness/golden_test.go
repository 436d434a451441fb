package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden traces live in testdata/golden. Regenerate with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden(t *testing.T) {
	for _, path := range scenarioFiles(t) {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTraceJSON_Canonical(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: one_step
description: "single bundle"
session_id: s-1
flow:
  - do: add:bd1
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	data, err := TraceJSON(s, result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"one_step","session_id":"s-1","trace":[{"action":"add:bd1","bundled":false,"seq":1,`+
			`"snapshot":{"auto_bundled":false,"free_shipping_progress":100,`+
			`"items":[{"id":"bd1","line_total":"100.00","name":"Solaris Bundle (Sunglasses + Lenses)","quantity":1,"unit_price":"100.00"}],`+
			`"remaining_for_free_shipping":"0.00",`+
			`"totals":{"shipping":"0.00","subtotal":"100.00","tax":"8.25","total":"108.25"},"units":1}}]}`,
		string(data))
}
