package gateway

import (
	"fmt"
)

// NoConfigurationError means the caller has no usable AI configuration. The
// message is user-actionable.
type NoConfigurationError struct {
	UserID   string
	ConfigID string
}

func (e *NoConfigurationError) Error() string {
	if e.ConfigID != "" {
		return fmt.Sprintf("AI configuration %s is missing, inactive, or not owned by you", e.ConfigID)
	}
	return "no default AI configuration found; set a default AI configuration first"
}

// ProviderCallError wraps a vendor API failure.
type ProviderCallError struct {
	Provider string
	Err      error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}
