package body

import (
	"bytes"
	"context"
	"fmt"
	"io"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
	bodyErrors "github.com/Motmedel/http_representation/pkg/http/types/body/errors"
)

const drainChunkSize = 32 << 10

// DrainReader reads r to exhaustion. The context is checked between chunk
// reads; a live source is otherwise bounded only by its own termination.
func DrainReader(ctx context.Context, reader io.Reader) ([]byte, error) {
	if reader == nil {
		return nil, representationErrors.NewWithTrace(bodyErrors.ErrNilStream)
	}

	var buffer bytes.Buffer
	chunk := make([]byte, drainChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, representationErrors.New(fmt.Errorf("context: %w", err))
		}

		numRead, err := reader.Read(chunk)
		if numRead > 0 {
			buffer.Write(chunk[:numRead])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, representationErrors.New(fmt.Errorf("reader read: %w", err))
		}
	}

	return buffer.Bytes(), nil
}

// ReplayBuffer is a single-producer/multi-consumer duplication primitive: one
// drain of a live stream feeds any number of independently-readable duplicate
// outputs.
type ReplayBuffer struct {
	data []byte
}

// EstablishReplay drains reader exactly once and captures the result.
func EstablishReplay(ctx context.Context, reader io.Reader) (*ReplayBuffer, error) {
	data, err := DrainReader(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("drain reader: %w", err)
	}

	return &ReplayBuffer{data: data}, nil
}

// NewReader yields a fresh drainable copy of the captured stream.
func (replayBuffer *ReplayBuffer) NewReader() io.Reader {
	return bytes.NewReader(replayBuffer.data)
}

func (replayBuffer *ReplayBuffer) Bytes() []byte {
	return replayBuffer.data
}

func (replayBuffer *ReplayBuffer) Len() int {
	return len(replayBuffer.data)
}
