package nagios

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
)

const (
	maxTargetIDLength  = 255
	maxCheckNameLength = 128
)

// ValidateTargetID validates a target ID. It names both the Nagios host and
// the config file, so it must be a plain file name.
func ValidateTargetID(id string) error {
	if id == "" {
		return errors.NewValidationError("target ID cannot be empty", nil)
	}

	if len(id) > maxTargetIDLength {
		return errors.NewValidationError(fmt.Sprintf("target ID cannot exceed %d characters", maxTargetIDLength), nil)
	}

	if id == "." || id == ".." {
		return errors.NewValidationError("target ID cannot be a relative path element", nil).WithContext("target_id", id)
	}

	for _, char := range id {
		if !isValidTargetIDChar(char) {
			return errors.NewValidationError("target ID contains invalid characters: only letters, numbers, dots, hyphens, and underscores are allowed", nil).
				WithContext("target_id", id)
		}
	}

	return nil
}

// ValidateCheckName validates an NRPE check name
func ValidateCheckName(name string) error {
	if name == "" {
		return errors.NewValidationError("check name cannot be empty", nil)
	}

	if len(name) > maxCheckNameLength {
		return errors.NewValidationError(fmt.Sprintf("check name cannot exceed %d characters", maxCheckNameLength), nil).
			WithContext("check", name)
	}

	for _, char := range name {
		if unicode.IsSpace(char) || !unicode.IsPrint(char) {
			return errors.NewValidationError("check name cannot contain whitespace or control characters", nil).
				WithContext("check", name)
		}
	}

	if err := validateAttributeValue(name); err != nil {
		return errors.NewValidationError("invalid check name", err).WithContext("check", name)
	}

	return nil
}

// ValidateAddress validates the ingress address. Empty is allowed; Nagios then
// falls back to the host name.
func ValidateAddress(address string) error {
	if strings.IndexFunc(address, unicode.IsSpace) >= 0 {
		return errors.NewValidationError("address cannot contain whitespace", nil).WithContext("address", address)
	}
	return validateAttributeValue(address)
}

// ValidateTarget validates every field of target
func ValidateTarget(target MonitoredTarget) error {
	if err := ValidateTargetID(target.TargetID); err != nil {
		return err
	}

	if err := ValidateAddress(target.IngressAddress); err != nil {
		return errors.NewValidationError("invalid ingress address", err).WithContext("target_id", target.TargetID)
	}

	for i, check := range target.Checks {
		if err := ValidateCheckName(check); err != nil {
			return errors.NewValidationError(fmt.Sprintf("invalid check at index %d", i), err).
				WithContext("target_id", target.TargetID)
		}
	}

	return nil
}

// validateAttributeValue rejects characters that end an attribute or a block
func validateAttributeValue(value string) error {
	if strings.ContainsAny(value, "{};\n\r") {
		return errors.NewValidationError("value contains reserved characters", nil).
			WithContext("reserved", "{ } ; newline")
	}
	return nil
}

func isValidTargetIDChar(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == '-' || char == '_' || char == '.'
}
