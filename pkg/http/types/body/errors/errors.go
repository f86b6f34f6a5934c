package errors

import (
	"errors"
)

var (
	ErrNilBody               = errors.New("nil body")
	ErrNilStream             = errors.New("nil stream")
	ErrBodyConsumed          = errors.New("body already consumed")
	ErrReplayUnavailable     = errors.New("replay unavailable")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrConversion            = errors.New("body conversion failed")
)

type CapabilityUnavailableError struct {
	Shape string
}

func (capabilityUnavailableError *CapabilityUnavailableError) Is(target error) bool {
	return target == ErrCapabilityUnavailable
}

func (capabilityUnavailableError *CapabilityUnavailableError) Error() string {
	return ErrCapabilityUnavailable.Error()
}

func (capabilityUnavailableError *CapabilityUnavailableError) GetInput() any {
	return capabilityUnavailableError.Shape
}

// ConversionError reports that a body could not be converted to a target
// shape. The message is stable; the underlying cause is reachable through
// Unwrap but never part of the message.
type ConversionError struct {
	Shape string
	Cause error
}

func (conversionError *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

func (conversionError *ConversionError) Error() string {
	return ErrConversion.Error()
}

func (conversionError *ConversionError) GetInput() any {
	return conversionError.Shape
}

func (conversionError *ConversionError) GetCause() error {
	return conversionError.Cause
}

func (conversionError *ConversionError) Unwrap() error {
	return conversionError.Cause
}
