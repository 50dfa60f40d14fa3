package errors

import (
	"strings"
	"unicode"
)

// ValidateTaxonLabel checks that a taxon label can be written back to Newick
// and NEXUS without quoting.
func ValidateTaxonLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "taxon label cannot be empty")
	}
	if len(label) > 256 {
		return New(ErrCodeInvalidInput, "taxon label too long (max 256 characters)")
	}
	for _, r := range label {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "taxon label %q contains whitespace or control characters", label)
		}
	}
	if strings.ContainsAny(label, "(),:;[]'") {
		return New(ErrCodeInvalidInput, "taxon label %q contains Newick punctuation", label)
	}
	return nil
}

// ValidateRunID validates a stored run identifier before it is used as a file
// name or database key.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "run id too long (max 64 characters)")
	}
	for _, r := range id {
		ok := r == '-' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		if !ok {
			return New(ErrCodeInvalidInput, "run id %q contains invalid characters", id)
		}
	}
	return nil
}
