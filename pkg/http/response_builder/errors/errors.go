package errors

import (
	"errors"
)

var (
	ErrConflictingMergePolicies    = errors.New("conflicting subsequent-full-response merge policies")
	ErrAlreadyContainsFullResponse = errors.New("already contains a full response")
	ErrFullResponseBodyConsumed    = errors.New("full response body already consumed")
)
