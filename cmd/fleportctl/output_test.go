package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

func TestOutputResult_UnknownFormat(t *testing.T) {
	err := outputResult(types.Settings{}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestOutputResult_SettingsTable(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, outputResult(types.DefaultSettings(), "table"))
	})
	assert.Contains(t, out, "SETTING")
	assert.Regexp(t, `earnings-milestones\s+no`, out)
	assert.Regexp(t, `document-expiry\s+yes`, out)
}

func TestOutputResult_FallbackJSON(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, outputResult(map[string]int{"n": 1}, "table"))
	})
	assert.JSONEq(t, `{"n": 1}`, out)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, "-"},
		{"empty string", "", "-"},
		{"string", "active", "active"},
		{"integer float", float64(120), "120"},
		{"fraction", 4.25, "4.25"},
		{"bool", true, "yes"},
		{"list", []interface{}{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}

func TestFormatDue(t *testing.T) {
	assert.Equal(t, "-", formatDue(nil))
	due := time.Date(2024, 1, 20, 15, 0, 0, 0, time.FixedZone("IST", 19800))
	assert.Equal(t, "2024-01-20", formatDue(&due))
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 400, Message: "must not be empty", Field: "title"}
	assert.Equal(t, "must not be empty (field title, HTTP 400)", err.Error())

	err = &APIError{StatusCode: 404, Message: "alert x not found"}
	assert.Equal(t, "alert x not found (HTTP 404)", err.Error())
}
