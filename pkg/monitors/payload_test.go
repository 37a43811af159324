package monitors

import (
	"testing"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChecks(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected []string
	}{
		{
			name:     "single quoted document",
			payload:  "{'monitors': {'remote': {'nrpe': {'a': 'load'}}}}",
			expected: []string{"load"},
		},
		{
			name:     "keeps document order",
			payload:  "{'monitors': {'remote': {'nrpe': {'x': 'disk', 'y': 'cpu'}}}}",
			expected: []string{"disk", "cpu"},
		},
		{
			name:     "order is not key order",
			payload:  "{'monitors': {'remote': {'nrpe': {'z': 'users', 'a': 'swap'}}}}",
			expected: []string{"users", "swap"},
		},
		{
			name:     "standard JSON",
			payload:  `{"monitors": {"remote": {"nrpe": {"root": "disk_root"}}}}`,
			expected: []string{"disk_root"},
		},
		{
			name: "block YAML",
			payload: `
monitors:
  remote:
    nrpe:
      load: check_load
      procs: check_procs
`,
			expected: []string{"check_load", "check_procs"},
		},
		{
			name:     "value containing a quote",
			payload:  `{'monitors': {'remote': {'nrpe': {'a': "it's"}}}}`,
			expected: []string{"it's"},
		},
		{
			name:     "empty payload",
			payload:  "",
			expected: []string{},
		},
		{
			name:     "no nrpe section",
			payload:  "{'monitors': {'remote': {}}}",
			expected: []string{},
		},
		{
			name:     "null nrpe section",
			payload:  "{'monitors': {'remote': {'nrpe': null}}}",
			expected: []string{},
		},
		{
			name:     "empty nrpe section",
			payload:  "{'monitors': {'remote': {'nrpe': {}}}}",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks, err := ParseChecks(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, checks)
		})
	}
}

func TestParseChecks_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "unbalanced braces", payload: "{'monitors': {'remote': {'nrpe': {'a': 'load'}}"},
		{name: "nrpe is a list", payload: "{'monitors': {'remote': {'nrpe': ['load']}}}"},
		{name: "nrpe is a string", payload: "{'monitors': {'remote': {'nrpe': 'load'}}}"},
		{name: "nested check value", payload: "{'monitors': {'remote': {'nrpe': {'a': {'command': 'load'}}}}}"},
		{name: "monitors is a list", payload: "{'monitors': ['remote']}"},
		{name: "top level scalar", payload: "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks, err := ParseChecks(tt.payload)
			assert.Nil(t, checks)
			require.Error(t, err)
			assert.True(t, errors.IsMalformedPayloadError(err), "got %v", err)
		})
	}
}

func TestExtract(t *testing.T) {
	payload, err := Extract(map[string]string{
		KeyTargetID:       "web-1",
		KeyIngressAddress: "10.0.0.5",
		KeyMonitors:       "{'monitors': {'remote': {'nrpe': {'x': 'disk'}}}}",
		"private-address":  "10.0.0.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "web-1", payload.TargetID)
	assert.Equal(t, "10.0.0.5", payload.IngressAddress)

	target, err := payload.Target()
	require.NoError(t, err)
	assert.Equal(t, "web-1", target.TargetID)
	assert.Equal(t, []string{"disk"}, target.Checks)
}

func TestExtract_MissingTargetID(t *testing.T) {
	for _, data := range []map[string]string{
		nil,
		{},
		{KeyIngressAddress: "10.0.0.5"},
		{KeyTargetID: "  "},
	} {
		_, err := Extract(data)
		require.Error(t, err)
		assert.True(t, errors.IsMissingFieldError(err))
	}
}

func TestPayloadTarget_InvalidCheck(t *testing.T) {
	payload := Payload{
		TargetID: "web-1",
		Monitors: "{'monitors': {'remote': {'nrpe': {'a': 'check disk'}}}}",
	}

	_, err := payload.Target()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, errors.IsInputError(err))
}
