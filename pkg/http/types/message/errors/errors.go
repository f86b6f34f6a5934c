package errors

import (
	"errors"
)

var (
	ErrNilRequest              = errors.New("nil request")
	ErrNullBodyStatusWithBody  = errors.New("null-body status with non-empty body")
	ErrInvalidRedirectStatus   = errors.New("invalid redirect status")
	ErrInvalidRedirectLocation = errors.New("invalid redirect location")
)

type NullBodyStatusWithBodyError struct {
	Status int
}

func (nullBodyStatusWithBodyError *NullBodyStatusWithBodyError) Is(target error) bool {
	return target == ErrNullBodyStatusWithBody
}

func (nullBodyStatusWithBodyError *NullBodyStatusWithBodyError) Error() string {
	return ErrNullBodyStatusWithBody.Error()
}

func (nullBodyStatusWithBodyError *NullBodyStatusWithBodyError) GetInput() any {
	return nullBodyStatusWithBodyError.Status
}

type InvalidRedirectStatusError struct {
	Status int
}

func (invalidRedirectStatusError *InvalidRedirectStatusError) Is(target error) bool {
	return target == ErrInvalidRedirectStatus
}

func (invalidRedirectStatusError *InvalidRedirectStatusError) Error() string {
	return ErrInvalidRedirectStatus.Error()
}

func (invalidRedirectStatusError *InvalidRedirectStatusError) GetInput() any {
	return invalidRedirectStatusError.Status
}
