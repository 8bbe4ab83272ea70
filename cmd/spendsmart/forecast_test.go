package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsmart/internal/analytics"
)

func TestRenderForecast(t *testing.T) {
	report := analytics.ForecastReport{
		Points:   []analytics.ForecastPoint{{Day: 1, Projected: 50}, {Day: 2, Projected: -50}},
		AvgDaily: 100,
		Warnings: []string{"You will run short by ₹50 on day 2"},
	}

	var buf bytes.Buffer
	require.NoError(t, renderForecast(&buf, report, "₹"))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "Projected")
	assert.Contains(t, lines[1], "₹50.00")
	assert.Contains(t, lines[2], "₹-50.00")
	assert.Contains(t, out, "Average daily spend: ₹100.00")
	assert.Contains(t, out, "Warning: You will run short by ₹50 on day 2")
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "worker", "migrate", "seed", "forecast", "sheets-auth"} {
		assert.Contains(t, names, want)
	}
}

func TestForecastCommand_MemoryBackend(t *testing.T) {
	t.Setenv("SPENDSMART_CONFIG", "")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"forecast", "--days", "3", "--balance", "100"})

	require.NoError(t, root.Execute())
	out := buf.String()
	assert.Contains(t, out, "₹100.00")
	assert.Contains(t, out, "Average daily spend: ₹0.00")
}
