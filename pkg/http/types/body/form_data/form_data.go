package form_data

import (
	"fmt"
	"iter"
	"net/url"
	"strings"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
)

type Entry struct {
	Name  string
	Value string
}

// FormData is an ordered name/value form representation. Unlike a plain map,
// duplicate names and insertion order are both preserved.
type FormData struct {
	entries []Entry
}

func New() *FormData {
	return &FormData{}
}

func (formData *FormData) Append(name string, value string) {
	formData.entries = append(formData.entries, Entry{Name: name, Value: value})
}

func (formData *FormData) Get(name string) (string, bool) {
	for _, entry := range formData.entries {
		if entry.Name == name {
			return entry.Value, true
		}
	}

	return "", false
}

func (formData *FormData) GetAll(name string) []string {
	var values []string

	for _, entry := range formData.entries {
		if entry.Name == name {
			values = append(values, entry.Value)
		}
	}

	return values
}

func (formData *FormData) Has(name string) bool {
	_, ok := formData.Get(name)
	return ok
}

func (formData *FormData) Entries() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, entry := range formData.entries {
			if !yield(entry.Name, entry.Value) {
				return
			}
		}
	}
}

func (formData *FormData) Len() int {
	return len(formData.entries)
}

func (formData *FormData) Clone() *FormData {
	clone := New()
	clone.entries = append(clone.entries, formData.entries...)

	return clone
}

// Encode serializes the entries as application/x-www-form-urlencoded in
// insertion order.
func (formData *FormData) Encode() string {
	var builder strings.Builder

	for i, entry := range formData.entries {
		if i != 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(url.QueryEscape(entry.Name))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(entry.Value))
	}

	return builder.String()
}

// Parse decodes `&`/`=`-delimited, percent-encoded pairs with `+` treated as
// space. A pair without `=` yields an entry with an empty value.
func Parse(data []byte) (*FormData, error) {
	formData := New()

	for _, rawPair := range strings.Split(string(data), "&") {
		if rawPair == "" {
			continue
		}

		rawName, rawValue, _ := strings.Cut(rawPair, "=")

		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return nil, representationErrors.NewWithTrace(
				fmt.Errorf("query unescape (name): %w", err),
				rawName,
			)
		}

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, representationErrors.NewWithTrace(
				fmt.Errorf("query unescape (value): %w", err),
				rawValue,
			)
		}

		formData.Append(name, value)
	}

	return formData, nil
}
