package headers

import (
	_ "embed"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
	headersErrors "github.com/Motmedel/http_representation/pkg/http/types/headers/errors"
	"github.com/Motmedel/parsing_utils/pkg/parsing_utils"
	goabnf "github.com/pandatix/go-abnf"
)

//go:embed name_grammar.txt
var nameGrammar []byte

//go:embed value_grammar.txt
var valueGrammar []byte

var HeaderNameGrammar *goabnf.Grammar
var HeaderValueGrammar *goabnf.Grammar

func ValidateName(name string) error {
	paths, err := parsing_utils.GetParsedDataPaths(HeaderNameGrammar, []byte(name))
	if err != nil || len(paths) == 0 {
		return representationErrors.NewWithTrace(
			fmt.Errorf("%w: %w", representationErrors.ErrSyntaxError, &headersErrors.InvalidHeaderNameError{Name: name}),
			name,
		)
	}

	return nil
}

func ValidateValue(value string) error {
	paths, err := parsing_utils.GetParsedDataPaths(HeaderValueGrammar, []byte(value))
	if err != nil || len(paths) == 0 {
		return representationErrors.NewWithTrace(
			fmt.Errorf("%w: %w", representationErrors.ErrSyntaxError, &headersErrors.InvalidHeaderValueError{Value: value}),
			value,
		)
	}

	return nil
}

type Entry struct {
	Name  string
	Value string
}

type Headers struct {
	entries []Entry
	guard   guardPolicy
	mode    GuardMode
}

func New() *Headers {
	return &Headers{guard: noGuard{}, mode: GuardModeNone}
}

func From(other *Headers) (*Headers, error) {
	if other == nil {
		return nil, representationErrors.NewWithTrace(headersErrors.ErrNilHeaders)
	}

	headers := New()

	for name, value := range other.Entries() {
		if err := headers.Append(name, value); err != nil {
			return nil, fmt.Errorf("append (%s): %w", name, err)
		}
	}

	return headers, nil
}

func stringifyScalar(value any) (string, bool) {
	switch typedValue := value.(type) {
	case string:
		return typedValue, true
	case int:
		return strconv.Itoa(typedValue), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", typedValue), true
	case float32:
		return stringifyScalar(float64(typedValue))
	case float64:
		if math.IsNaN(typedValue) {
			return "", false
		}
		return strconv.FormatFloat(typedValue, 'f', -1, 64), true
	default:
		return "", false
	}
}

func scalarValues(value any) []string {
	var values []string

	switch typedValue := value.(type) {
	case []string:
		values = typedValue
	case []any:
		for _, element := range typedValue {
			if stringValue, ok := stringifyScalar(element); ok {
				values = append(values, stringValue)
			}
		}
	default:
		if stringValue, ok := stringifyScalar(typedValue); ok {
			values = append(values, stringValue)
		}
	}

	return values
}

func FromMap(initMap map[string]any) (*Headers, error) {
	headers := New()

	for name, value := range initMap {
		for _, stringValue := range scalarValues(value) {
			if err := headers.Append(name, stringValue); err != nil {
				return nil, fmt.Errorf("append (%s): %w", name, err)
			}
		}
	}

	return headers, nil
}

func pairElements(pair any) ([]string, error) {
	var elements []string

	switch typedPair := pair.(type) {
	case [2]string:
		elements = typedPair[:]
	case []string:
		elements = typedPair
	case []any:
		for _, element := range typedPair {
			stringValue, ok := stringifyScalar(element)
			if !ok {
				return nil, representationErrors.NewWithTrace(headersErrors.ErrInvalidPair, pair)
			}
			elements = append(elements, stringValue)
		}
	default:
		return nil, representationErrors.NewWithTrace(headersErrors.ErrInvalidPair, pair)
	}

	if len(elements) != 2 {
		return nil, representationErrors.NewWithTrace(headersErrors.ErrInvalidPair, pair)
	}

	return elements, nil
}

func FromPairs(pairs []any) (*Headers, error) {
	headers := New()

	for _, pair := range pairs {
		elements, err := pairElements(pair)
		if err != nil {
			return nil, fmt.Errorf("pair elements: %w", err)
		}

		if err := headers.Append(elements[0], elements[1]); err != nil {
			return nil, fmt.Errorf("append (%s): %w", elements[0], err)
		}
	}

	return headers, nil
}

// Make builds a Headers value from any of the accepted init shapes: another
// *Headers, a name-to-scalar-or-scalars mapping, or a sequence of two-element
// name/value pairs.
func Make(init any) (*Headers, error) {
	switch typedInit := init.(type) {
	case nil:
		return New(), nil
	case *Headers:
		return From(typedInit)
	case map[string]any:
		return FromMap(typedInit)
	case map[string]string:
		initMap := make(map[string]any, len(typedInit))
		for name, value := range typedInit {
			initMap[name] = value
		}
		return FromMap(initMap)
	case map[string][]string:
		initMap := make(map[string]any, len(typedInit))
		for name, values := range typedInit {
			initMap[name] = values
		}
		return FromMap(initMap)
	case [][2]string:
		pairs := make([]any, 0, len(typedInit))
		for _, pair := range typedInit {
			pairs = append(pairs, pair)
		}
		return FromPairs(pairs)
	case [][]string:
		pairs := make([]any, 0, len(typedInit))
		for _, pair := range typedInit {
			pairs = append(pairs, pair)
		}
		return FromPairs(pairs)
	case []any:
		return FromPairs(typedInit)
	default:
		return nil, representationErrors.NewWithTrace(headersErrors.ErrUnsupportedInit, init)
	}
}

// Guarded builds a Headers value like Make and composes the guard policy
// selected by mode. The init entries are not subject to the guard.
func Guarded(init any, mode GuardMode) (*Headers, error) {
	headers, err := Make(init)
	if err != nil {
		return nil, fmt.Errorf("make: %w", err)
	}

	headers.guard = guardPolicyForMode(mode)
	headers.mode = mode

	return headers, nil
}

func (headers *Headers) checkMutation(name, value string, checkValue bool) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", fmt.Errorf("validate name: %w", err)
	}

	if checkValue {
		if err := ValidateValue(value); err != nil {
			return "", fmt.Errorf("validate value: %w", err)
		}
	}

	lowerName := strings.ToLower(name)

	guard := headers.guard
	if guard == nil {
		guard = noGuard{}
	}

	if err := guard.CheckMutation(lowerName); err != nil {
		return "", fmt.Errorf("guard check mutation: %w", err)
	}

	return lowerName, nil
}

func (headers *Headers) Get(name string) (string, bool) {
	lowerName := strings.ToLower(name)

	for _, entry := range headers.entries {
		if entry.Name == lowerName {
			return entry.Value, true
		}
	}

	return "", false
}

func (headers *Headers) GetAll(name string) []string {
	lowerName := strings.ToLower(name)

	var values []string
	for _, entry := range headers.entries {
		if entry.Name == lowerName {
			values = append(values, entry.Value)
		}
	}

	return values
}

func (headers *Headers) Has(name string) bool {
	_, ok := headers.Get(name)
	return ok
}

// Set replaces every value of name with value. The position of the first
// occurrence is retained; an absent name is appended at the end.
func (headers *Headers) Set(name string, value string) error {
	lowerName, err := headers.checkMutation(name, value, true)
	if err != nil {
		return err
	}

	replaced := false
	entries := headers.entries[:0]
	for _, entry := range headers.entries {
		if entry.Name == lowerName {
			if !replaced {
				entries = append(entries, Entry{Name: lowerName, Value: value})
				replaced = true
			}
			continue
		}
		entries = append(entries, entry)
	}
	headers.entries = entries

	if !replaced {
		headers.entries = append(headers.entries, Entry{Name: lowerName, Value: value})
	}

	return nil
}

func (headers *Headers) Append(name string, value string) error {
	lowerName, err := headers.checkMutation(name, value, true)
	if err != nil {
		return err
	}

	headers.entries = append(headers.entries, Entry{Name: lowerName, Value: value})

	return nil
}

func (headers *Headers) Delete(name string) error {
	lowerName, err := headers.checkMutation(name, "", false)
	if err != nil {
		return err
	}

	entries := headers.entries[:0]
	for _, entry := range headers.entries {
		if entry.Name != lowerName {
			entries = append(entries, entry)
		}
	}
	headers.entries = entries

	return nil
}

func (headers *Headers) Entries() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, entry := range headers.entries {
			if !yield(entry.Name, entry.Value) {
				return
			}
		}
	}
}

func (headers *Headers) Len() int {
	return len(headers.entries)
}

func (headers *Headers) Mode() GuardMode {
	return headers.mode
}

func init() {
	var err error

	HeaderNameGrammar, err = goabnf.ParseABNF(nameGrammar)
	if err != nil {
		panic(fmt.Sprintf("goabnf parse abnf (header name grammar): %v", err))
	}

	HeaderValueGrammar, err = goabnf.ParseABNF(valueGrammar)
	if err != nil {
		panic(fmt.Sprintf("goabnf parse abnf (header value grammar): %v", err))
	}
}
