package errors

import (
	"errors"
)

var (
	ErrNilHeaders          = errors.New("nil headers")
	ErrInvalidHeaderName   = errors.New("invalid header name")
	ErrInvalidHeaderValue  = errors.New("invalid header value")
	ErrImmutableHeaders    = errors.New("immutable headers")
	ErrForbiddenHeaderName = errors.New("forbidden header name")
	ErrInvalidPair         = errors.New("invalid header pair")
	ErrUnsupportedInit     = errors.New("unsupported headers init")
)

type InvalidHeaderNameError struct {
	Name string
}

func (invalidHeaderNameError *InvalidHeaderNameError) Is(target error) bool {
	return target == ErrInvalidHeaderName
}

func (invalidHeaderNameError *InvalidHeaderNameError) Error() string {
	return ErrInvalidHeaderName.Error()
}

func (invalidHeaderNameError *InvalidHeaderNameError) GetInput() any {
	return invalidHeaderNameError.Name
}

type InvalidHeaderValueError struct {
	Value string
}

func (invalidHeaderValueError *InvalidHeaderValueError) Is(target error) bool {
	return target == ErrInvalidHeaderValue
}

func (invalidHeaderValueError *InvalidHeaderValueError) Error() string {
	return ErrInvalidHeaderValue.Error()
}

func (invalidHeaderValueError *InvalidHeaderValueError) GetInput() any {
	return invalidHeaderValueError.Value
}

type ForbiddenHeaderNameError struct {
	Name string
}

func (forbiddenHeaderNameError *ForbiddenHeaderNameError) Is(target error) bool {
	return target == ErrForbiddenHeaderName
}

func (forbiddenHeaderNameError *ForbiddenHeaderNameError) Error() string {
	return ErrForbiddenHeaderName.Error()
}

func (forbiddenHeaderNameError *ForbiddenHeaderNameError) GetInput() any {
	return forbiddenHeaderNameError.Name
}
