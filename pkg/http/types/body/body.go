package body

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
	bodyErrors "github.com/Motmedel/http_representation/pkg/http/types/body/errors"
	"github.com/Motmedel/http_representation/pkg/http/types/body/form_data"
	"github.com/Motmedel/http_representation/pkg/utils"
	"golang.org/x/sync/singleflight"
)

// Body owns one resolved byte-source representation together with its
// consumption state. Accessors are single-assignment operations: the first
// call consumes the body unless consumption is ignored, and a stream-backed
// source that ignores consumption is drained exactly once into a replay
// buffer yielding a fresh copy per logical read.
type Body struct {
	source            *Source
	consumed          bool
	ignoreConsumption bool
	replay            *ReplayBuffer
	replayMutex       sync.Mutex
	replayBroken      bool
	replayGroup       singleflight.Group
}

func (body *Body) getReplay() *ReplayBuffer {
	body.replayMutex.Lock()
	defer body.replayMutex.Unlock()

	return body.replay
}

func (body *Body) setReplay(replayBuffer *ReplayBuffer) {
	body.replayMutex.Lock()
	defer body.replayMutex.Unlock()

	body.replay = replayBuffer
}

func New(input any) (*Body, error) {
	source, err := Resolve(input)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	return &Body{source: source}, nil
}

func Empty() *Body {
	return &Body{source: &Source{Tag: SourceTagNone}}
}

func FromSource(source *Source) *Body {
	if source == nil {
		source = &Source{Tag: SourceTagNone}
	}

	return &Body{source: source}
}

func (body *Body) GetSource() *Source {
	return body.source
}

func (body *Body) HasBody() bool {
	return body.source != nil && body.source.Tag != SourceTagNone
}

func (body *Body) BodyUsed() bool {
	return body.consumed
}

func (body *Body) IgnoresConsumption() bool {
	return body.ignoreConsumption
}

// IgnoreBodyUsed is a one-way switch. It has no effect once the body is in a
// terminal consumed state with no replay buffer to fall back on.
func (body *Body) IgnoreBodyUsed() {
	if body.consumed && body.getReplay() == nil {
		return
	}

	body.ignoreConsumption = true
}

func (body *Body) InferredContentType() string {
	if body.source == nil {
		return ""
	}

	return body.source.InferredContentType()
}

func (body *Body) sourceBytes() []byte {
	source := body.source

	switch source.Tag {
	case SourceTagText:
		return []byte(source.Text)
	case SourceTagBlob:
		if source.Blob == nil {
			return nil
		}
		return source.Blob.Data
	case SourceTagFormData:
		if source.FormData == nil {
			return nil
		}
		return []byte(source.FormData.Encode())
	case SourceTagBuffer:
		return source.Buffer
	case SourceTagArrayBuffer:
		return source.ArrayBuffer
	default:
		return nil
	}
}

func (body *Body) consumeStream(ctx context.Context) ([]byte, error) {
	if body.consumed && !body.ignoreConsumption {
		return nil, representationErrors.NewWithTrace(bodyErrors.ErrBodyConsumed)
	}

	if !body.ignoreConsumption {
		data, err := DrainReader(ctx, body.source.Stream)
		if err != nil {
			return nil, fmt.Errorf("drain reader: %w", err)
		}

		body.consumed = true

		return data, nil
	}

	if replayBuffer := body.getReplay(); replayBuffer != nil {
		return replayBuffer.Bytes(), nil
	}

	if !body.replayBroken && !HostCapabilities().Replay {
		body.replayBroken = true
	}

	if body.replayBroken {
		// Degraded single-use semantics: the live stream can be read once;
		// any further read is a reuse failure.
		if body.consumed {
			return nil, representationErrors.NewWithTrace(bodyErrors.ErrReplayUnavailable)
		}

		data, err := DrainReader(ctx, body.source.Stream)
		if err != nil {
			return nil, fmt.Errorf("drain reader: %w", err)
		}

		body.consumed = true

		return data, nil
	}

	// Concurrent callers during an in-flight establishment await the same
	// pending setup instead of triggering a second drain.
	result, err, _ := body.replayGroup.Do("replay", func() (any, error) {
		if replayBuffer := body.getReplay(); replayBuffer != nil {
			return replayBuffer, nil
		}

		replayBuffer, err := EstablishReplay(ctx, body.source.Stream)
		if err != nil {
			return nil, fmt.Errorf("establish replay: %w", err)
		}

		body.setReplay(replayBuffer)

		return replayBuffer, nil
	})
	if err != nil {
		return nil, representationErrors.New(fmt.Errorf("replay group do: %w", err))
	}

	replayBuffer, err := utils.Convert[*ReplayBuffer](result)
	if err != nil {
		return nil, fmt.Errorf("convert (replay buffer): %w", err)
	}

	return replayBuffer.Bytes(), nil
}

func (body *Body) consumeBytes(ctx context.Context) ([]byte, error) {
	source := body.source
	if source == nil || source.Tag == SourceTagNone {
		return nil, nil
	}

	if body.consumed && !body.ignoreConsumption {
		return nil, representationErrors.NewWithTrace(bodyErrors.ErrBodyConsumed)
	}

	if source.Tag == SourceTagStream {
		return body.consumeStream(ctx)
	}

	if !body.ignoreConsumption {
		body.consumed = true
	}

	return body.sourceBytes(), nil
}

func checkCapability(shape string, available bool) error {
	if !available {
		return representationErrors.NewWithTrace(&bodyErrors.CapabilityUnavailableError{Shape: shape})
	}

	return nil
}

// ArrayBuffer returns an owned copy of the body bytes.
func (body *Body) ArrayBuffer(ctx context.Context) ([]byte, error) {
	if err := checkCapability(SourceTagArrayBuffer.String(), HostCapabilities().Buffer); err != nil {
		return nil, err
	}

	data, err := body.consumeBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("consume bytes: %w", err)
	}

	return cloneBytes(data), nil
}

func (body *Body) Blob(ctx context.Context) (*Blob, error) {
	if err := checkCapability(SourceTagBlob.String(), HostCapabilities().Blob); err != nil {
		return nil, err
	}

	source := body.source

	data, err := body.consumeBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("consume bytes: %w", err)
	}

	mediaType := ""
	if source != nil {
		mediaType = source.InferredContentType()
	}

	return &Blob{Data: cloneBytes(data), MediaType: mediaType}, nil
}

func (body *Body) FormData(ctx context.Context) (*form_data.FormData, error) {
	if err := checkCapability(SourceTagFormData.String(), HostCapabilities().FormData); err != nil {
		return nil, err
	}

	source := body.source

	data, err := body.consumeBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("consume bytes: %w", err)
	}

	if source != nil && source.Tag == SourceTagFormData && source.FormData != nil {
		return source.FormData.Clone(), nil
	}

	formData, err := form_data.Parse(data)
	if err != nil {
		return nil, representationErrors.New(
			&bodyErrors.ConversionError{Shape: SourceTagFormData.String(), Cause: err},
			data,
		)
	}

	return formData, nil
}

// Text decodes the body bytes as UTF-8. Invalid sequences are substituted
// with the replacement character rather than failing the read.
func (body *Body) Text(ctx context.Context) (string, error) {
	data, err := body.consumeBytes(ctx)
	if err != nil {
		return "", fmt.Errorf("consume bytes: %w", err)
	}

	return strings.ToValidUTF8(string(data), "�"), nil
}

// TextConverted decodes the body bytes along the legacy code-unit path: each
// two-byte little-endian pair is one UTF-16 code unit.
func (body *Body) TextConverted(ctx context.Context) (string, error) {
	data, err := body.consumeBytes(ctx)
	if err != nil {
		return "", fmt.Errorf("consume bytes: %w", err)
	}

	if len(data)%2 != 0 {
		return "", representationErrors.NewWithTrace(
			&bodyErrors.ConversionError{Shape: SourceTagText.String()},
			data,
		)
	}

	codeUnits := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		codeUnits = append(codeUnits, uint16(data[i])|uint16(data[i+1])<<8)
	}

	return string(utf16.Decode(codeUnits)), nil
}

// JSON decodes the body bytes as structured text into target.
func (body *Body) JSON(ctx context.Context, target any) error {
	data, err := body.consumeBytes(ctx)
	if err != nil {
		return fmt.Errorf("consume bytes: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return representationErrors.New(
			&bodyErrors.ConversionError{Shape: "json", Cause: err},
			data,
		)
	}

	return nil
}

// Buffer returns the body bytes without copying where the representation
// allows it. Engine-internal escape hatch; does not mark consumption for
// non-stream sources.
func (body *Body) Buffer(ctx context.Context) ([]byte, error) {
	source := body.source
	if source == nil || source.Tag == SourceTagNone {
		return nil, nil
	}

	if source.Tag == SourceTagStream {
		return body.consumeStream(ctx)
	}

	return body.sourceBytes(), nil
}

// BestRepresentation returns the resolved source in its natural shape.
// Engine-internal escape hatch; never marks consumption and never drains. A
// stream with an established replay is reported as a buffer.
func (body *Body) BestRepresentation() *Source {
	source := body.source
	if source != nil && source.Tag == SourceTagStream {
		if replayBuffer := body.getReplay(); replayBuffer != nil {
			return &Source{Tag: SourceTagBuffer, Buffer: replayBuffer.Bytes()}
		}
	}

	return source
}

// ForceDrain resolves a stream-backed source into a buffer source, draining
// the live stream if no replay buffer exists yet. Non-stream sources are
// returned unchanged. Engine-internal escape hatch.
func (body *Body) ForceDrain(ctx context.Context) (*Source, error) {
	source := body.source
	if source == nil || source.Tag != SourceTagStream {
		return source, nil
	}

	data, err := body.consumeStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("consume stream: %w", err)
	}

	return &Source{Tag: SourceTagBuffer, Buffer: data}, nil
}
