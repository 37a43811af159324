package nagios

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTargetID(t *testing.T) {
	tests := []struct {
		id          string
		expectError bool
	}{
		{"web-1", false},
		{"db_0.example", false},
		{"UPPER", false},
		{"", true},
		{".", true},
		{"..", true},
		{"a/b", true},
		{"a b", true},
		{"host{", true},
		{strings.Repeat("a", 256), true},
		{strings.Repeat("a", 255), false},
	}

	for _, tt := range tests {
		err := ValidateTargetID(tt.id)
		if tt.expectError {
			assert.Error(t, err, "id %q", tt.id)
		} else {
			assert.NoError(t, err, "id %q", tt.id)
		}
	}
}

func TestValidateCheckName(t *testing.T) {
	valid := []string{"load", "check_disk_root", "cpu-usage", "mem.free"}
	for _, name := range valid {
		assert.NoError(t, ValidateCheckName(name), name)
	}

	invalid := []string{"", "two words", "tab\tbed", "semi;colon", "brace{", "line\nbreak", strings.Repeat("c", 129)}
	for _, name := range invalid {
		assert.Error(t, ValidateCheckName(name), name)
	}
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress(""))
	assert.NoError(t, ValidateAddress("10.0.0.5"))
	assert.NoError(t, ValidateAddress("fe80::1"))
	assert.NoError(t, ValidateAddress("web-1.internal"))
	assert.Error(t, ValidateAddress("10.0.0.5 10.0.0.6"))
	assert.Error(t, ValidateAddress("10.0.0.5;"))
}
