package body

import (
	"fmt"
	"io"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
	bodyErrors "github.com/Motmedel/http_representation/pkg/http/types/body/errors"
	"github.com/Motmedel/http_representation/pkg/http/types/body/form_data"
	"github.com/Motmedel/http_representation/pkg/utils"
)

type SourceTag int

const (
	SourceTagNone SourceTag = iota
	SourceTagText
	SourceTagBlob
	SourceTagFormData
	SourceTagBuffer
	SourceTagArrayBuffer
	SourceTagStream
)

func (sourceTag SourceTag) String() string {
	switch sourceTag {
	case SourceTagNone:
		return "none"
	case SourceTagText:
		return "text"
	case SourceTagBlob:
		return "blob"
	case SourceTagFormData:
		return "form-data"
	case SourceTagBuffer:
		return "buffer"
	case SourceTagArrayBuffer:
		return "array-buffer"
	case SourceTagStream:
		return "stream"
	default:
		return "unknown"
	}
}

type Blob struct {
	Data      []byte
	MediaType string
}

func (blob *Blob) Size() int {
	return len(blob.Data)
}

// Source is a tagged byte-source representation. At most one of the tag
// payload fields is populated.
type Source struct {
	Tag         SourceTag
	Text        string
	Blob        *Blob
	FormData    *form_data.FormData
	Buffer      []byte
	ArrayBuffer []byte
	Stream      io.Reader
	// ParamsDerived marks a text source that originated from a
	// URL-encoded-params value; it only affects content-type inference.
	ParamsDerived bool
}

func (source *Source) IsEmpty() bool {
	switch source.Tag {
	case SourceTagNone:
		return true
	case SourceTagText:
		return source.Text == ""
	case SourceTagBlob:
		return source.Blob == nil || len(source.Blob.Data) == 0
	case SourceTagFormData:
		return source.FormData == nil || source.FormData.Len() == 0
	case SourceTagBuffer:
		return len(source.Buffer) == 0
	case SourceTagArrayBuffer:
		return len(source.ArrayBuffer) == 0
	case SourceTagStream:
		// A live stream's emptiness is unknown until drained.
		return true
	default:
		return true
	}
}

// InferredContentType returns the content type implied by the source shape,
// or the empty string when no inference applies.
func (source *Source) InferredContentType() string {
	switch source.Tag {
	case SourceTagText:
		if source.ParamsDerived {
			return "application/x-www-form-urlencoded;charset=UTF-8"
		}
		return "text/plain;charset=UTF-8"
	case SourceTagBlob:
		if blob := source.Blob; blob != nil && blob.MediaType != "" {
			return blob.MediaType
		}
		return ""
	default:
		return ""
	}
}

// BodyCarrier marks a value that exposes its own resolved body, such as a
// message wrapping one.
type BodyCarrier interface {
	GetBody() *Body
}

// URLParamsEncoder marks a URL-encoded-params-like value.
type URLParamsEncoder interface {
	EncodeParams() string
}

// ByteViewer marks a data-view-like value exposing a window of bytes.
type ByteViewer interface {
	ViewBytes() []byte
}

// ArrayBufferLike marks an array-buffer-like value whose bytes are cloned on
// resolution.
type ArrayBufferLike interface {
	ArrayBufferBytes() []byte
}

func cloneBytes(data []byte) []byte {
	cloned := make([]byte, len(data))
	copy(cloned, data)

	return cloned
}

// Resolve turns an arbitrary input value into one tagged byte-source
// representation. The first matching rule wins; anything unmatched is
// stringified and treated as text.
func Resolve(input any) (*Source, error) {
	if utils.IsNil(input) {
		return &Source{Tag: SourceTagNone}, nil
	}

	capabilities := HostCapabilities()

	if source, ok := input.(*Source); ok {
		return source, nil
	}

	if carried, ok := input.(*Body); ok {
		if carried.source == nil {
			return &Source{Tag: SourceTagNone}, nil
		}
		return carried.source, nil
	}

	if bodyCarrier, ok := input.(BodyCarrier); ok {
		carried := bodyCarrier.GetBody()
		if carried == nil {
			return nil, representationErrors.NewWithTrace(bodyErrors.ErrNilBody)
		}
		if carried.source == nil {
			return &Source{Tag: SourceTagNone}, nil
		}
		return carried.source, nil
	}

	if reader, ok := input.(io.Reader); ok {
		if !capabilities.Stream {
			return nil, representationErrors.NewWithTrace(
				&bodyErrors.CapabilityUnavailableError{Shape: SourceTagStream.String()},
			)
		}
		return &Source{Tag: SourceTagStream, Stream: reader}, nil
	}

	if buffer, ok := input.([]byte); ok {
		if !capabilities.Buffer {
			return nil, representationErrors.NewWithTrace(
				&bodyErrors.CapabilityUnavailableError{Shape: SourceTagBuffer.String()},
			)
		}
		return &Source{Tag: SourceTagBuffer, Buffer: buffer}, nil
	}

	if blob, ok := input.(*Blob); ok {
		if !capabilities.Blob {
			return nil, representationErrors.NewWithTrace(
				&bodyErrors.CapabilityUnavailableError{Shape: SourceTagBlob.String()},
			)
		}
		return &Source{Tag: SourceTagBlob, Blob: blob}, nil
	}

	if formData, ok := input.(*form_data.FormData); ok {
		if !capabilities.FormData {
			return nil, representationErrors.NewWithTrace(
				&bodyErrors.CapabilityUnavailableError{Shape: SourceTagFormData.String()},
			)
		}
		return &Source{Tag: SourceTagFormData, FormData: formData}, nil
	}

	if urlParamsEncoder, ok := input.(URLParamsEncoder); ok {
		return &Source{
			Tag:           SourceTagText,
			Text:          urlParamsEncoder.EncodeParams(),
			ParamsDerived: true,
		}, nil
	}

	if byteViewer, ok := input.(ByteViewer); ok {
		return &Source{
			Tag:  SourceTagBlob,
			Blob: &Blob{Data: cloneBytes(byteViewer.ViewBytes())},
		}, nil
	}

	if arrayBufferLike, ok := input.(ArrayBufferLike); ok {
		return &Source{
			Tag:         SourceTagArrayBuffer,
			ArrayBuffer: cloneBytes(arrayBufferLike.ArrayBufferBytes()),
		}, nil
	}

	switch typedInput := input.(type) {
	case string:
		return &Source{Tag: SourceTagText, Text: typedInput}, nil
	case fmt.Stringer:
		return &Source{Tag: SourceTagText, Text: typedInput.String()}, nil
	default:
		return &Source{Tag: SourceTagText, Text: fmt.Sprintf("%v", typedInput)}, nil
	}
}
