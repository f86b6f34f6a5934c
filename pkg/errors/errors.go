package errors

import (
	"errors"
	"reflect"
	"runtime"
	"strings"
)

var (
	ErrSyntaxError     = errors.New("syntax error")
	ErrSemanticError   = errors.New("semantic error")
	ErrConversionNotOk = errors.New("conversion not ok")
	ErrZeroValue       = errors.New("zero value")
)

func removeFunctionFromStackTrace(stackTrace, funcName string) string {
	lines := strings.Split(stackTrace, "\n")
	filtered := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		// Check if the line matches the function signature (e.g., "main.funcName()")
		if strings.HasPrefix(lines[i], funcName+"(") {
			// Skip this line and the next line (file/line info)
			i++
		} else {
			filtered = append(filtered, lines[i])
		}
	}
	return strings.Join(filtered, "\n")
}

func getFunctionName(f any) string {
	return runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
}

func CaptureStackTrace() string {
	buf := make([]byte, 64<<10)
	return strings.TrimSpace(
		removeFunctionFromStackTrace(string(buf[:runtime.Stack(buf, false)]), getFunctionName(CaptureStackTrace)),
	)
}

type CauseErrorI interface {
	Error() string
	GetCause() error
	Unwrap() error
}

type InputErrorI interface {
	Error() string
	GetInput() any
}

type StackTraceErrorI interface {
	Error() string
	GetStackTrace() string
}

type Error struct {
	Message    string
	Cause      error
	Input      any
	StackTrace string
}

func (err *Error) Error() string {
	if err.Message != "" {
		return err.Message
	}

	if cause := err.Cause; cause != nil {
		return cause.Error()
	}

	return ""
}

func (err *Error) GetCause() error {
	return err.Cause
}

func (err *Error) GetInput() any {
	return err.Input
}

func (err *Error) GetStackTrace() string {
	return err.StackTrace
}

func (err *Error) Unwrap() error {
	return err.Cause
}

func New(cause error, input ...any) *Error {
	var errInput any = input
	if len(input) == 0 {
		errInput = nil
	} else if len(input) == 1 {
		errInput = input[0]
	}

	return &Error{Cause: cause, Input: errInput}
}

func NewWithTrace(cause error, input ...any) *Error {
	err := New(cause, input...)
	err.StackTrace = removeFunctionFromStackTrace(
		CaptureStackTrace(),
		getFunctionName(NewWithTrace),
	)

	return err
}
