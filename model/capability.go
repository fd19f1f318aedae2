// Package model provides capability-based model selection for the
// assistant's language services. Instead of hardcoding model names, callers
// specify capabilities (classification, generation) and the registry
// resolves them to available models with fallback chains.
package model

// Capability represents a semantic capability for model selection.
type Capability string

const (
	// CapabilityClassification is for intent classification and entity
	// extraction from customer messages.
	CapabilityClassification Capability = "classification"

	// CapabilityGeneration is for composing natural-language responses.
	CapabilityGeneration Capability = "generation"

	// CapabilityFast is for quick, low-stakes completions.
	CapabilityFast Capability = "fast"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityClassification, CapabilityGeneration, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// invalid values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}
