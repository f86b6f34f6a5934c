package body

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	bodyErrors "github.com/Motmedel/http_representation/pkg/http/types/body/errors"
	"github.com/Motmedel/http_representation/pkg/http/types/body/form_data"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

type testParams struct {
	encoded string
}

func (params *testParams) EncodeParams() string {
	return params.encoded
}

type testByteView struct {
	data []byte
}

func (view *testByteView) ViewBytes() []byte {
	return view.data
}

type testArrayBuffer struct {
	data []byte
}

func (arrayBuffer *testArrayBuffer) ArrayBufferBytes() []byte {
	return arrayBuffer.data
}

type testCarrier struct {
	body *Body
}

func (carrier *testCarrier) GetBody() *Body {
	return carrier.body
}

func TestResolve(t *testing.T) {
	t.Run("nil input resolves to no source", func(t *testing.T) {
		source, err := Resolve(nil)
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagNone {
			t.Errorf("got tag %v, expected %v", source.Tag, SourceTagNone)
		}
	})

	t.Run("body carrier wins over other shapes", func(t *testing.T) {
		carried, err := New("inner")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		source, err := Resolve(&testCarrier{body: carried})
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagText || source.Text != "inner" {
			t.Errorf("got (%v, %q), expected text source %q", source.Tag, source.Text, "inner")
		}
	})

	t.Run("typed nil input resolves to no source", func(t *testing.T) {
		var reader *bytes.Reader
		source, err := Resolve(reader)
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagNone {
			t.Errorf("got tag %v, expected %v", source.Tag, SourceTagNone)
		}
	})

	t.Run("carrier without a body fails", func(t *testing.T) {
		if _, err := Resolve(&testCarrier{}); !errors.Is(err, bodyErrors.ErrNilBody) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrNilBody)
		}
	})

	t.Run("reader resolves to stream", func(t *testing.T) {
		source, err := Resolve(strings.NewReader("streamed"))
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagStream {
			t.Errorf("got tag %v, expected %v", source.Tag, SourceTagStream)
		}
	})

	t.Run("byte slice resolves to shared buffer", func(t *testing.T) {
		data := []byte("raw")
		source, err := Resolve(data)
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagBuffer {
			t.Fatalf("got tag %v, expected %v", source.Tag, SourceTagBuffer)
		}

		data[0] = 'R'
		if source.Buffer[0] != 'R' {
			t.Error("expected buffer to share the input bytes")
		}
	})

	t.Run("blob and form data resolve to their own tags", func(t *testing.T) {
		blobSource, err := Resolve(&Blob{Data: []byte("b"), MediaType: "application/octet-stream"})
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if blobSource.Tag != SourceTagBlob {
			t.Errorf("got tag %v, expected %v", blobSource.Tag, SourceTagBlob)
		}

		formData := form_data.New()
		formData.Append("a", "1")
		formDataSource, err := Resolve(formData)
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if formDataSource.Tag != SourceTagFormData {
			t.Errorf("got tag %v, expected %v", formDataSource.Tag, SourceTagFormData)
		}
	})

	t.Run("params-like value is stringified to text", func(t *testing.T) {
		source, err := Resolve(&testParams{encoded: "a=1&b=2"})
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagText || source.Text != "a=1&b=2" {
			t.Errorf("got (%v, %q), expected params text", source.Tag, source.Text)
		}
		if !source.ParamsDerived {
			t.Error("expected params-derived mark")
		}
	})

	t.Run("byte view is cloned into a blob", func(t *testing.T) {
		data := []byte("view")
		source, err := Resolve(&testByteView{data: data})
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagBlob {
			t.Fatalf("got tag %v, expected %v", source.Tag, SourceTagBlob)
		}

		data[0] = 'V'
		if source.Blob.Data[0] != 'v' {
			t.Error("expected blob bytes to be cloned")
		}
	})

	t.Run("array-buffer-like value is cloned", func(t *testing.T) {
		data := []byte("array")
		source, err := Resolve(&testArrayBuffer{data: data})
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagArrayBuffer {
			t.Fatalf("got tag %v, expected %v", source.Tag, SourceTagArrayBuffer)
		}

		data[0] = 'A'
		if source.ArrayBuffer[0] != 'a' {
			t.Error("expected array buffer bytes to be cloned")
		}
	})

	t.Run("anything else is stringified", func(t *testing.T) {
		source, err := Resolve(42)
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if source.Tag != SourceTagText || source.Text != "42" {
			t.Errorf("got (%v, %q), expected stringified text", source.Tag, source.Text)
		}
	})
}

func TestConsumption(t *testing.T) {
	ctx := context.Background()

	t.Run("second accessor call fails", func(t *testing.T) {
		testBody, err := New("once")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		if _, err := testBody.Text(ctx); err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}
		if !testBody.BodyUsed() {
			t.Error("expected body to be used")
		}

		if _, err := testBody.Text(ctx); !errors.Is(err, bodyErrors.ErrBodyConsumed) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrBodyConsumed)
		}
	})

	t.Run("absent body yields empty results without consuming", func(t *testing.T) {
		testBody := Empty()

		for i := 0; i < 2; i++ {
			text, err := testBody.Text(ctx)
			if err != nil {
				t.Fatalf("unexpected text error: %v", err)
			}
			if text != "" {
				t.Errorf("got %q, expected empty", text)
			}
		}

		if testBody.BodyUsed() {
			t.Error("expected body to stay unused")
		}
	})

	t.Run("ignore body used allows repeated reads", func(t *testing.T) {
		testBody, err := New("again")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}
		testBody.IgnoreBodyUsed()

		for i := 0; i < 2; i++ {
			text, err := testBody.Text(ctx)
			if err != nil {
				t.Fatalf("unexpected text error: %v", err)
			}
			if text != "again" {
				t.Errorf("got %q, expected %q", text, "again")
			}
		}
	})

	t.Run("ignore body used has no effect after terminal consumption", func(t *testing.T) {
		testBody, err := New("late")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		if _, err := testBody.Text(ctx); err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}

		testBody.IgnoreBodyUsed()

		if _, err := testBody.Text(ctx); !errors.Is(err, bodyErrors.ErrBodyConsumed) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrBodyConsumed)
		}
	})
}

func TestStreamReplay(t *testing.T) {
	ctx := context.Background()

	t.Run("two reads observe identical bytes", func(t *testing.T) {
		testBody, err := New(strings.NewReader("replayed content"))
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}
		testBody.IgnoreBodyUsed()

		first, err := testBody.Text(ctx)
		if err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}
		second, err := testBody.Text(ctx)
		if err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}

		if first != "replayed content" || second != first {
			t.Errorf("got (%q, %q), expected identical full reads", first, second)
		}
	})

	t.Run("live stream without ignoring is single use", func(t *testing.T) {
		testBody, err := New(strings.NewReader("drained"))
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		if _, err := testBody.Text(ctx); err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}
		if _, err := testBody.Text(ctx); !errors.Is(err, bodyErrors.ErrBodyConsumed) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrBodyConsumed)
		}
	})

	t.Run("missing replay capability degrades to single use", func(t *testing.T) {
		capabilities := HostCapabilities()
		capabilities.Replay = false
		restore := SetHostCapabilities(capabilities)
		defer restore()

		testBody, err := New(strings.NewReader("degraded"))
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}
		testBody.IgnoreBodyUsed()

		text, err := testBody.Text(ctx)
		if err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}
		if text != "degraded" {
			t.Errorf("got %q, expected %q", text, "degraded")
		}

		if _, err := testBody.Text(ctx); !errors.Is(err, bodyErrors.ErrReplayUnavailable) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrReplayUnavailable)
		}
	})

	t.Run("concurrent reads share one establishment drain", func(t *testing.T) {
		reader := &slowReader{data: []byte("shared establishment"), delay: 5 * time.Millisecond}

		testBody, err := New(reader)
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}
		testBody.IgnoreBodyUsed()

		group, groupCtx := errgroup.WithContext(ctx)
		for i := 0; i < 4; i++ {
			group.Go(func() error {
				text, err := testBody.Text(groupCtx)
				if err != nil {
					return err
				}
				if text != "shared establishment" {
					return errors.New("partial read observed")
				}
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			t.Fatalf("errgroup wait: %v", err)
		}

		// One byte per read plus the terminating read; more would mean a
		// second drain of the live stream.
		expectedNumReads := int32(len(reader.data) + 1)
		if numReads := reader.numReads.Load(); numReads != expectedNumReads {
			t.Errorf("got %d reads, expected %d", numReads, expectedNumReads)
		}
	})
}

type slowReader struct {
	data     []byte
	position int
	delay    time.Duration
	numReads atomic.Int32
}

func (reader *slowReader) Read(destination []byte) (int, error) {
	reader.numReads.Add(1)
	time.Sleep(reader.delay)

	if reader.position >= len(reader.data) {
		return 0, io.EOF
	}

	numCopied := copy(destination, reader.data[reader.position:reader.position+1])
	reader.position += numCopied

	return numCopied, nil
}

func TestAccessors(t *testing.T) {
	ctx := context.Background()

	t.Run("array buffer returns an owned copy", func(t *testing.T) {
		data := []byte("owned")
		testBody, err := New(data)
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		result, err := testBody.ArrayBuffer(ctx)
		if err != nil {
			t.Fatalf("unexpected array buffer error: %v", err)
		}

		data[0] = 'O'
		if result[0] != 'o' {
			t.Error("expected returned bytes to be an owned copy")
		}
	})

	t.Run("blob carries the inferred media type", func(t *testing.T) {
		testBody, err := New("plain")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		blob, err := testBody.Blob(ctx)
		if err != nil {
			t.Fatalf("unexpected blob error: %v", err)
		}
		if blob.MediaType != "text/plain;charset=UTF-8" {
			t.Errorf("got %q, expected inferred text media type", blob.MediaType)
		}
		if !bytes.Equal(blob.Data, []byte("plain")) {
			t.Errorf("got %q, expected %q", blob.Data, "plain")
		}
	})

	t.Run("form data parses urlencoded text", func(t *testing.T) {
		testBody, err := New("a=1&b=with+space")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		formData, err := testBody.FormData(ctx)
		if err != nil {
			t.Fatalf("unexpected form data error: %v", err)
		}
		if value, _ := formData.Get("b"); value != "with space" {
			t.Errorf("got %q, expected %q", value, "with space")
		}
	})

	t.Run("form data conversion failure hides the cause", func(t *testing.T) {
		testBody, err := New("a=%zz")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		_, err = testBody.FormData(ctx)
		if !errors.Is(err, bodyErrors.ErrConversion) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrConversion)
		}

		var conversionError *bodyErrors.ConversionError
		if !errors.As(err, &conversionError) {
			t.Fatalf("expected conversion error, got %T", err)
		}
		if conversionError.Error() != bodyErrors.ErrConversion.Error() {
			t.Errorf("got message %q, expected stable message", conversionError.Error())
		}
	})

	t.Run("json decodes structured text", func(t *testing.T) {
		testBody, err := New(`{"name": "composite", "count": 3}`)
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		var decoded struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}
		if err := testBody.JSON(ctx, &decoded); err != nil {
			t.Fatalf("unexpected json error: %v", err)
		}

		if diff := cmp.Diff("composite", decoded.Name); diff != "" {
			t.Errorf("name mismatch (-expected +got):\n%s", diff)
		}
		if decoded.Count != 3 {
			t.Errorf("got %d, expected 3", decoded.Count)
		}
	})

	t.Run("malformed json is a conversion error", func(t *testing.T) {
		testBody, err := New("{")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		var decoded map[string]any
		if err := testBody.JSON(ctx, &decoded); !errors.Is(err, bodyErrors.ErrConversion) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrConversion)
		}
	})

	t.Run("text substitutes invalid utf-8 sequences", func(t *testing.T) {
		testBody, err := New([]byte{'a', 0xff, 'b'})
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		text, err := testBody.Text(ctx)
		if err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}
		if text != "a�b" {
			t.Errorf("got %q, expected %q", text, "a�b")
		}
	})

	t.Run("text converted decodes two-byte code units", func(t *testing.T) {
		testBody, err := New([]byte{'H', 0, 'i', 0})
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		text, err := testBody.TextConverted(ctx)
		if err != nil {
			t.Fatalf("unexpected text converted error: %v", err)
		}
		if text != "Hi" {
			t.Errorf("got %q, expected %q", text, "Hi")
		}
	})

	t.Run("text converted fails on odd byte count", func(t *testing.T) {
		testBody, err := New([]byte{'H', 0, 'i'})
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		if _, err := testBody.TextConverted(ctx); !errors.Is(err, bodyErrors.ErrConversion) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrConversion)
		}
	})

	t.Run("missing shape capability is reported distinctly", func(t *testing.T) {
		capabilities := HostCapabilities()
		capabilities.Blob = false
		restore := SetHostCapabilities(capabilities)
		defer restore()

		testBody, err := New("blobless")
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		if _, err := testBody.Blob(ctx); !errors.Is(err, bodyErrors.ErrCapabilityUnavailable) {
			t.Fatalf("got error %v, expected %v", err, bodyErrors.ErrCapabilityUnavailable)
		}

		// The body stays readable through other shapes.
		if _, err := testBody.Text(ctx); err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}
	})
}

func TestEscapeHatches(t *testing.T) {
	ctx := context.Background()

	t.Run("best representation never drains a live stream", func(t *testing.T) {
		testBody, err := New(strings.NewReader("undrained"))
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		source := testBody.BestRepresentation()
		if source.Tag != SourceTagStream {
			t.Errorf("got tag %v, expected %v", source.Tag, SourceTagStream)
		}
		if !source.IsEmpty() {
			t.Error("expected an undrained stream to report empty")
		}
		if testBody.BodyUsed() {
			t.Error("expected best representation to leave consumption untouched")
		}
	})

	t.Run("force drain resolves a stream into a buffer", func(t *testing.T) {
		testBody, err := New(strings.NewReader("drain me"))
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}

		source, err := testBody.ForceDrain(ctx)
		if err != nil {
			t.Fatalf("unexpected force drain error: %v", err)
		}
		if source.Tag != SourceTagBuffer || string(source.Buffer) != "drain me" {
			t.Errorf("got (%v, %q), expected drained buffer", source.Tag, source.Buffer)
		}
	})

	t.Run("best representation reports an established replay as buffer", func(t *testing.T) {
		testBody, err := New(strings.NewReader("cached"))
		if err != nil {
			t.Fatalf("unexpected new error: %v", err)
		}
		testBody.IgnoreBodyUsed()

		if _, err := testBody.Text(ctx); err != nil {
			t.Fatalf("unexpected text error: %v", err)
		}

		source := testBody.BestRepresentation()
		if source.Tag != SourceTagBuffer || string(source.Buffer) != "cached" {
			t.Errorf("got (%v, %q), expected replay buffer", source.Tag, source.Buffer)
		}
	})
}
