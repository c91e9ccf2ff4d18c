package common

import (
	"fmt"
)

// InvalidArgumentError is returned when a caller violates an input contract,
// e.g. mismatched sequence lengths or a non-positive worker count.
type InvalidArgumentError struct {
	Message string
}

func (ia InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", ia.Message)
}

// NewInvalidArgumentError creates a new instance of InvalidArgumentError with the given message.
func NewInvalidArgumentError(message string) InvalidArgumentError {
	return InvalidArgumentError{
		Message: message,
	}
}

// ResourceExhaustedError is returned when the intermediate buffers of a comparison can't be allocated.
type ResourceExhaustedError struct {
	Message string
}

func (re ResourceExhaustedError) Error() string {
	return fmt.Sprintf("resource exhausted: %s", re.Message)
}

// NewResourceExhaustedError creates a new instance of ResourceExhaustedError with the given message.
func NewResourceExhaustedError(message string) ResourceExhaustedError {
	return ResourceExhaustedError{
		Message: message,
	}
}

// UnknownError is returned when an unknown error happens.
type UnknownError struct {
	Message string
}

func (ue UnknownError) Error() string {
	return ue.Message
}

// NewUnknownError creates a new instance of UnknownError with the given message.
func NewUnknownError(message string) UnknownError {
	return UnknownError{
		Message: message,
	}
}
