package message

import (
	"fmt"
	"net/url"
	"strings"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
	bodyPkg "github.com/Motmedel/http_representation/pkg/http/types/body"
	headersPkg "github.com/Motmedel/http_representation/pkg/http/types/headers"
	messageErrors "github.com/Motmedel/http_representation/pkg/http/types/message/errors"
	"github.com/google/uuid"
)

const (
	ResponseTypeDefault = "default"
	ResponseTypeError   = "error"

	DefaultStatus     = 200
	DefaultMethod     = "GET"
	ContentTypeHeader = "content-type"
)

var nullBodyStatuses = map[int]struct{}{
	101: {},
	204: {},
	205: {},
	304: {},
}

var redirectStatuses = map[int]struct{}{
	301: {},
	302: {},
	303: {},
	307: {},
	308: {},
}

type ResponseOptions struct {
	Status     int
	StatusText string
	Headers    any
}

// Response is an immutable status plus one consumable body and one header
// collection. A partial response carries no authority of its own; it only
// contributes to a composed result.
type Response struct {
	id           string
	status       int
	hasStatus    bool
	statusText   string
	headers      *headersPkg.Headers
	body         *bodyPkg.Body
	redirected   bool
	responseType string
	partial      bool
}

func makeMessageParts(bodyInput any, headersInit any) (*bodyPkg.Body, *headersPkg.Headers, error) {
	messageBody, err := bodyPkg.New(bodyInput)
	if err != nil {
		return nil, nil, fmt.Errorf("body new: %w", err)
	}

	messageHeaders, err := headersPkg.Make(headersInit)
	if err != nil {
		return nil, nil, fmt.Errorf("headers make: %w", err)
	}

	if !messageHeaders.Has(ContentTypeHeader) {
		if inferredContentType := messageBody.InferredContentType(); inferredContentType != "" {
			if err := messageHeaders.Append(ContentTypeHeader, inferredContentType); err != nil {
				return nil, nil, fmt.Errorf("headers append (content type): %w", err)
			}
		}
	}

	return messageBody, messageHeaders, nil
}

func newResponse(bodyInput any, options *ResponseOptions, partial bool) (*Response, error) {
	if options == nil {
		options = &ResponseOptions{}
	}

	messageBody, messageHeaders, err := makeMessageParts(bodyInput, options.Headers)
	if err != nil {
		return nil, fmt.Errorf("make message parts: %w", err)
	}

	response := &Response{
		id:           uuid.New().String(),
		statusText:   options.StatusText,
		headers:      messageHeaders,
		body:         messageBody,
		responseType: ResponseTypeDefault,
		partial:      partial,
	}

	if options.Status != 0 {
		response.status = options.Status
		response.hasStatus = true
	}

	if response.hasStatus && messageBody.HasBody() {
		if _, ok := nullBodyStatuses[response.status]; ok {
			return nil, representationErrors.NewWithTrace(
				fmt.Errorf(
					"%w: %w",
					representationErrors.ErrSemanticError,
					&messageErrors.NullBodyStatusWithBodyError{Status: response.status},
				),
				response.status,
			)
		}
	}

	if partial {
		messageBody.IgnoreBodyUsed()
	}

	return response, nil
}

func NewResponse(bodyInput any, options *ResponseOptions) (*Response, error) {
	return newResponse(bodyInput, options, false)
}

// NewPartialResponse builds a response flagged partial. Its status stays
// unset unless explicitly given, so merge logic can tell a no-opinion
// fragment from an authoritative one, and its body starts out ignoring
// consumption.
func NewPartialResponse(bodyInput any, options *ResponseOptions) (*Response, error) {
	return newResponse(bodyInput, options, true)
}

// ErrorResponse returns a response of type "error" with an immutably-guarded
// empty header set.
func ErrorResponse() *Response {
	errorHeaders, err := headersPkg.Guarded(nil, headersPkg.GuardModeImmutable)
	if err != nil {
		// Guarding an empty init cannot fail.
		panic(fmt.Sprintf("guarded (empty init): %v", err))
	}

	return &Response{
		id:           uuid.New().String(),
		headers:      errorHeaders,
		body:         bodyPkg.Empty(),
		responseType: ResponseTypeError,
	}
}

// Redirect builds a redirected response with a single immutably-guarded
// Location header holding the normalized absolute URL.
func Redirect(rawUrl string, status int) (*Response, error) {
	if _, ok := redirectStatuses[status]; !ok {
		return nil, representationErrors.NewWithTrace(
			fmt.Errorf(
				"%w: %w",
				representationErrors.ErrSemanticError,
				&messageErrors.InvalidRedirectStatusError{Status: status},
			),
			status,
		)
	}

	parsedUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, representationErrors.NewWithTrace(
			fmt.Errorf("%w: url parse: %w", messageErrors.ErrInvalidRedirectLocation, err),
			rawUrl,
		)
	}
	if !parsedUrl.IsAbs() {
		return nil, representationErrors.NewWithTrace(messageErrors.ErrInvalidRedirectLocation, rawUrl)
	}

	redirectHeaders := headersPkg.New()
	if err := redirectHeaders.Set("location", parsedUrl.String()); err != nil {
		return nil, fmt.Errorf("headers set (location): %w", err)
	}

	guardedHeaders, err := headersPkg.Guarded(redirectHeaders, headersPkg.GuardModeImmutable)
	if err != nil {
		return nil, fmt.Errorf("headers guarded: %w", err)
	}

	return &Response{
		id:           uuid.New().String(),
		status:       status,
		hasStatus:    true,
		headers:      guardedHeaders,
		body:         bodyPkg.Empty(),
		redirected:   true,
		responseType: ResponseTypeDefault,
	}, nil
}

func (response *Response) Id() string {
	return response.id
}

// Status returns the effective status: 200 when unset, except for error-type
// responses, which report 0.
func (response *Response) Status() int {
	if !response.hasStatus {
		if response.responseType == ResponseTypeError {
			return 0
		}
		return DefaultStatus
	}

	return response.status
}

func (response *Response) HasStatus() bool {
	return response.hasStatus
}

func (response *Response) StatusText() string {
	return response.statusText
}

func (response *Response) Headers() *headersPkg.Headers {
	return response.headers
}

func (response *Response) GetBody() *bodyPkg.Body {
	return response.body
}

func (response *Response) Ok() bool {
	status := response.Status()
	return status >= 200 && status < 300
}

func (response *Response) Redirected() bool {
	return response.redirected
}

func (response *Response) Type() string {
	return response.responseType
}

func (response *Response) Partial() bool {
	return response.partial
}

// Clone produces a new response sharing status, headers and the
// not-yet-consumed body. A body consumed before cloning keeps its single-use
// restriction in the clone.
func (response *Response) Clone() *Response {
	clone := *response
	clone.id = uuid.New().String()

	return &clone
}

type RequestOptions struct {
	Method  string
	Headers any
	Body    any
}

type Request struct {
	id      string
	method  string
	url     string
	headers *headersPkg.Headers
	body    *bodyPkg.Body
}

// NewRequest accepts a URL string or another *Request as input. When built
// from another request without overrides, headers and body are inherited
// from it.
func NewRequest(input any, options *RequestOptions) (*Request, error) {
	if options == nil {
		options = &RequestOptions{}
	}

	request := &Request{id: uuid.New().String()}

	var parent *Request

	switch typedInput := input.(type) {
	case string:
		if typedInput == "" {
			return nil, representationErrors.NewWithTrace(
				fmt.Errorf("%w (url)", representationErrors.ErrZeroValue),
			)
		}
		request.url = typedInput
	case *Request:
		if typedInput == nil {
			return nil, representationErrors.NewWithTrace(messageErrors.ErrNilRequest)
		}
		parent = typedInput
		request.url = parent.url
	default:
		return nil, representationErrors.NewWithTrace(
			fmt.Errorf("%w: %T", representationErrors.ErrConversionNotOk, input),
			input,
		)
	}

	method := options.Method
	if method == "" {
		if parent != nil {
			method = parent.method
		} else {
			method = DefaultMethod
		}
	}
	request.method = strings.ToUpper(method)

	if parent != nil && options.Headers == nil && options.Body == nil {
		request.headers = parent.headers
		request.body = parent.body

		return request, nil
	}

	bodyInput := options.Body
	if bodyInput == nil && parent != nil {
		bodyInput = parent.body
	}

	headersInit := options.Headers
	if headersInit == nil && parent != nil {
		headersInit = parent.headers
	}

	requestBody, requestHeaders, err := makeMessageParts(bodyInput, headersInit)
	if err != nil {
		return nil, fmt.Errorf("make message parts: %w", err)
	}

	request.headers = requestHeaders
	request.body = requestBody

	return request, nil
}

func (request *Request) Id() string {
	return request.id
}

func (request *Request) Method() string {
	return request.method
}

func (request *Request) Url() string {
	return request.url
}

func (request *Request) Headers() *headersPkg.Headers {
	return request.headers
}

func (request *Request) GetBody() *bodyPkg.Body {
	return request.body
}
