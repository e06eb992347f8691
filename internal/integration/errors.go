package integration

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVendor is returned when no connector is registered for a vendor slug.
	ErrUnknownVendor = errors.New("unknown vendor")
	// ErrUnknownOperation is returned when a connector does not support an operation.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrNotConnected is returned when a tenant has no usable credentials for a vendor.
	ErrNotConnected = errors.New("vendor not connected")
	// ErrInvalidParams marks a caller mistake: a missing or malformed operation
	// parameter. The gateway maps it to a 400, not a server fault.
	ErrInvalidParams = errors.New("invalid operation parameters")
)

// MissingParam reports a required operation parameter the caller did not supply.
func MissingParam(name string) error {
	return fmt.Errorf("%w: parameter %q is required", ErrInvalidParams, name)
}

// VendorError describes a failed call to an external vendor API. Retryable
// distinguishes transient failures (throttling, 5xx, network) from fatal ones
// (auth, validation), so callers do not have to parse opaque strings.
type VendorError struct {
	Vendor     string
	Operation  string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Vendor, e.Operation, e.StatusCode, e.Message)
}

// IsRetryable reports whether err is a transient vendor failure.
func IsRetryable(err error) bool {
	var ve *VendorError
	if errors.As(err, &ve) {
		return ve.Retryable
	}
	return false
}
