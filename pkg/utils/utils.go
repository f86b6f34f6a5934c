package utils

import (
	"fmt"
	"reflect"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
)

func Convert[T any](value any) (T, error) {
	convertedValue, ok := value.(T)
	if !ok {
		return convertedValue, representationErrors.NewWithTrace(
			fmt.Errorf("%w: %T", representationErrors.ErrConversionNotOk, value),
			value,
		)
	}

	return convertedValue, nil
}

func IsNil(value any) bool {
	if value == nil {
		return true
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return reflect.ValueOf(value).IsNil()
	default:
		return false
	}
}
