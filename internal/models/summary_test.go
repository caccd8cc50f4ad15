package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeVerdict(t *testing.T, raw string) Verdict {
	t.Helper()
	var v Verdict
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestSummaryFormat(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "plain string unchanged",
			raw:      `{"valid":true,"summary":"Go developer, remote, 3000$"}`,
			expected: "Go developer, remote, 3000$",
		},
		{
			name:     "description wins over fields",
			raw:      `{"valid":true,"summary":{"position":"Engineer","description":"Backend role in Kyiv"}}`,
			expected: "Backend role in Kyiv",
		},
		{
			name:     "all labeled fields",
			raw:      `{"valid":true,"summary":{"position":"Engineer","company":"Acme","location":"Lviv","salary":2500}}`,
			expected: "🎯 Engineer\n🏢 Acme\n📍 Lviv\n💰 2500",
		},
		{
			name:     "unknown object falls back to raw",
			raw:      `{"valid":true,"summary":{"foo":"bar"}}`,
			expected: `{"foo":"bar"}`,
		},
		{
			name:     "array falls back to raw",
			raw:      `{"valid":true,"summary":["a","b"]}`,
			expected: `["a","b"]`,
		},
		{
			name:     "null summary",
			raw:      `{"valid":true,"summary":null}`,
			expected: noSummary,
		},
		{
			name:     "missing summary",
			raw:      `{"valid":false,"reason":"no salary"}`,
			expected: noSummary,
		},
		{
			name:     "empty string",
			raw:      `{"valid":true,"summary":""}`,
			expected: noSummary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := decodeVerdict(t, tt.raw)
			assert.Equal(t, tt.expected, v.Summary.Format())
		})
	}
}

func TestSummaryFormat_TwoFieldStructure(t *testing.T) {
	v := decodeVerdict(t, `{"valid":true,"summary":{"position":"Engineer","company":"Acme"}}`)

	out := v.Summary.Format()
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Engineer")
	assert.Contains(t, lines[1], "Acme")
	assert.NotEqual(t, "Engineer", lines[0], "line should carry a label prefix")
}

func TestSummaryFormat_TextSummary(t *testing.T) {
	assert.Equal(t, "hello", TextSummary("hello").Format())
}

func TestFiltersBool(t *testing.T) {
	f := Filters{
		FilterSalaryOnly: true,
		FilterRemoteOnly: "false",
		"strict":         "on",
		"weight":         float64(1),
	}

	assert.True(t, f.Bool(FilterSalaryOnly))
	assert.False(t, f.Bool(FilterRemoteOnly))
	assert.True(t, f.Bool("strict"))
	assert.True(t, f.Bool("weight"))
	assert.False(t, f.Bool("missing"))
}
