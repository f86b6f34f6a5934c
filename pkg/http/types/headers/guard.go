package headers

import (
	"strings"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
	headersErrors "github.com/Motmedel/http_representation/pkg/http/types/headers/errors"
)

type GuardMode int

const (
	GuardModeNone GuardMode = iota
	GuardModeImmutable
	GuardModeRequest
	GuardModeResponse
)

func (guardMode GuardMode) String() string {
	switch guardMode {
	case GuardModeNone:
		return "none"
	case GuardModeImmutable:
		return "immutable"
	case GuardModeRequest:
		return "request"
	case GuardModeResponse:
		return "response"
	default:
		return "unknown"
	}
}

type guardPolicy interface {
	CheckMutation(lowerName string) error
}

type noGuard struct{}

func (noGuard) CheckMutation(string) error {
	return nil
}

type immutableGuard struct{}

func (immutableGuard) CheckMutation(string) error {
	return representationErrors.NewWithTrace(headersErrors.ErrImmutableHeaders)
}

type forbiddenNamesGuard struct {
	names    map[string]struct{}
	prefixes []string
}

func (forbiddenNamesGuard *forbiddenNamesGuard) CheckMutation(lowerName string) error {
	if _, ok := forbiddenNamesGuard.names[lowerName]; ok {
		return representationErrors.NewWithTrace(&headersErrors.ForbiddenHeaderNameError{Name: lowerName})
	}

	for _, prefix := range forbiddenNamesGuard.prefixes {
		if strings.HasPrefix(lowerName, prefix) {
			return representationErrors.NewWithTrace(&headersErrors.ForbiddenHeaderNameError{Name: lowerName})
		}
	}

	return nil
}

var forbiddenRequestHeaderNames = map[string]struct{}{
	"accept-charset":                 {},
	"accept-encoding":                {},
	"access-control-request-headers": {},
	"access-control-request-method":  {},
	"connection":                     {},
	"content-length":                 {},
	"cookie":                         {},
	"cookie2":                        {},
	"date":                           {},
	"dnt":                            {},
	"expect":                         {},
	"host":                           {},
	"keep-alive":                     {},
	"origin":                         {},
	"referer":                        {},
	"te":                             {},
	"trailer":                        {},
	"transfer-encoding":              {},
	"upgrade":                        {},
	"via":                            {},
}

var forbiddenResponseHeaderNames = map[string]struct{}{
	"set-cookie":  {},
	"set-cookie2": {},
}

func guardPolicyForMode(mode GuardMode) guardPolicy {
	switch mode {
	case GuardModeImmutable:
		return immutableGuard{}
	case GuardModeRequest:
		return &forbiddenNamesGuard{
			names:    forbiddenRequestHeaderNames,
			prefixes: []string{"proxy-", "sec-"},
		}
	case GuardModeResponse:
		return &forbiddenNamesGuard{names: forbiddenResponseHeaderNames}
	default:
		return noGuard{}
	}
}
