package response_builder

import (
	"context"
	"fmt"
	"strings"

	representationErrors "github.com/Motmedel/http_representation/pkg/errors"
	builderErrors "github.com/Motmedel/http_representation/pkg/http/response_builder/errors"
	"github.com/Motmedel/http_representation/pkg/http/response_builder/response_builder_config"
	bodyPkg "github.com/Motmedel/http_representation/pkg/http/types/body"
	"github.com/Motmedel/http_representation/pkg/http/types/message"
	headersPkg "github.com/Motmedel/http_representation/pkg/http/types/headers"
)

// ResponseBuilder folds an ordered, gap-tolerant sequence of response
// fragments into one full response. At most one fragment is ever non-partial;
// a present full fragment is authoritative for body and status.
type ResponseBuilder struct {
	config            *response_builder_config.Config
	entityHeaderNames map[string]struct{}
	fragments         []*message.Response
	hasFull           bool
	dirty             bool
	cached            *message.Response
}

func New(options ...response_builder_config.Option) (*ResponseBuilder, error) {
	config := response_builder_config.New(options...)

	if config.IgnoreSubsequentFullResponses && config.ReplaceSubsequentFullResponses {
		return nil, representationErrors.NewWithTrace(builderErrors.ErrConflictingMergePolicies)
	}

	entityHeaderNames := make(map[string]struct{}, len(config.EntityHeaderNames))
	for _, name := range config.EntityHeaderNames {
		entityHeaderNames[strings.ToLower(name)] = struct{}{}
	}

	return &ResponseBuilder{config: config, entityHeaderNames: entityHeaderNames}, nil
}

func (responseBuilder *ResponseBuilder) logDebug(msg string, args ...any) {
	if logger := responseBuilder.config.Logger; logger != nil {
		logger.Debug(msg, args...)
	}
}

func (responseBuilder *ResponseBuilder) invalidate() {
	responseBuilder.dirty = true
	responseBuilder.cached = nil
}

// With appends fragments in call order. A nil fragment is recorded as an
// explicit positional gap. A second full fragment is resolved according to
// the configured merge policy; without one it is a fatal state change at the
// With call itself, not at build time.
func (responseBuilder *ResponseBuilder) With(fragments ...*message.Response) error {
	for _, fragment := range fragments {
		if fragment == nil {
			responseBuilder.fragments = append(responseBuilder.fragments, nil)
			responseBuilder.invalidate()
			continue
		}

		if !fragment.Partial() && responseBuilder.hasFull {
			config := responseBuilder.config

			if config.IgnoreSubsequentFullResponses {
				responseBuilder.logDebug(
					"Ignored a subsequent full response fragment.",
					"message_id", fragment.Id(),
				)
				continue
			}

			if config.ReplaceSubsequentFullResponses {
				// Discard the previous full fragment and everything appended
				// before it; partials appended after it stay contributing.
				fullIndex := -1
				for index, existingFragment := range responseBuilder.fragments {
					if existingFragment != nil && !existingFragment.Partial() {
						fullIndex = index
						break
					}
				}

				retainedFragments := make([]*message.Response, 0, len(responseBuilder.fragments)-fullIndex)
				retainedFragments = append(retainedFragments, responseBuilder.fragments[fullIndex+1:]...)

				responseBuilder.logDebug(
					"Replaced the full response fragment and its predecessors.",
					"message_id", fragment.Id(),
					"num_discarded", fullIndex+1,
				)

				responseBuilder.fragments = append(retainedFragments, fragment)
				responseBuilder.invalidate()
				continue
			}

			return representationErrors.NewWithTrace(
				builderErrors.ErrAlreadyContainsFullResponse,
				fragment.Id(),
			)
		}

		if !fragment.Partial() {
			responseBuilder.hasFull = true
		}

		responseBuilder.fragments = append(responseBuilder.fragments, fragment)
		responseBuilder.invalidate()
	}

	return nil
}

// WithHeaders appends one bodiless partial fragment per headers init.
func (responseBuilder *ResponseBuilder) WithHeaders(headersInits ...any) error {
	for _, headersInit := range headersInits {
		fragment, err := message.NewPartialResponse(nil, &message.ResponseOptions{Headers: headersInit})
		if err != nil {
			return fmt.Errorf("new partial response: %w", err)
		}

		if err := responseBuilder.With(fragment); err != nil {
			return fmt.Errorf("with: %w", err)
		}
	}

	return nil
}

// Clear empties the fragment list and invalidates any cached build result.
// Configuration is retained.
func (responseBuilder *ResponseBuilder) Clear() {
	responseBuilder.fragments = nil
	responseBuilder.hasFull = false
	responseBuilder.invalidate()
}

// Fragments returns a copy of the registered fragment list, gaps included.
func (responseBuilder *ResponseBuilder) Fragments() []*message.Response {
	fragments := make([]*message.Response, len(responseBuilder.fragments))
	copy(fragments, responseBuilder.fragments)

	return fragments
}

func (responseBuilder *ResponseBuilder) resolveFragmentSource(
	ctx context.Context,
	fragment *message.Response,
) *bodyPkg.Source {
	fragmentBody := fragment.GetBody()

	source := fragmentBody.BestRepresentation()

	if (source == nil || source.IsEmpty()) && !responseBuilder.config.DisableReadableCheck {
		if rawSource := fragmentBody.GetSource(); rawSource != nil && rawSource.Tag == bodyPkg.SourceTagStream {
			drainedSource, err := fragmentBody.ForceDrain(ctx)
			if err != nil {
				// A drain failure only means the fragment contributes no body.
				responseBuilder.logDebug(
					"Force-draining a fragment stream failed.",
					"message_id", fragment.Id(),
					"error", err,
				)
			} else {
				source = drainedSource
			}
		}
	}

	return source
}

func (responseBuilder *ResponseBuilder) mergeHeaders(
	accumulatedHeaders *headersPkg.Headers,
	fragment *message.Response,
) error {
	useSet := responseBuilder.config.UseSetForEntityHeaders

	for name, value := range fragment.Headers().Entries() {
		_, isEntityHeader := responseBuilder.entityHeaderNames[name]

		if useSet && isEntityHeader {
			if err := accumulatedHeaders.Set(name, value); err != nil {
				return fmt.Errorf("headers set (%s): %w", name, err)
			}
			continue
		}

		if err := accumulatedHeaders.Append(name, value); err != nil {
			return fmt.Errorf("headers append (%s): %w", name, err)
		}
	}

	return nil
}

// Build folds the registered fragments into one full response. The result is
// cached until the fragment list changes. Build must not run concurrently
// with With or Clear on the same builder.
func (responseBuilder *ResponseBuilder) Build(ctx context.Context) (*message.Response, error) {
	if !responseBuilder.dirty && responseBuilder.cached != nil {
		return responseBuilder.cached, nil
	}

	var workingFragments []*message.Response
	for _, fragment := range responseBuilder.fragments {
		if fragment != nil {
			workingFragments = append(workingFragments, fragment)
		}
	}

	var fullFragment *message.Response
	for _, fragment := range workingFragments {
		if !fragment.Partial() {
			fullFragment = fragment
			break
		}
	}

	var finalSource *bodyPkg.Source
	var finalStatus int
	var finalStatusSet bool
	var finalStatusText string

	if fullFragment != nil {
		if fullFragment.GetBody().BodyUsed() {
			return nil, representationErrors.NewWithTrace(
				builderErrors.ErrFullResponseBodyConsumed,
				fullFragment.Id(),
			)
		}

		finalSource = responseBuilder.resolveFragmentSource(ctx, fullFragment)
		if fullFragment.HasStatus() {
			finalStatus = fullFragment.Status()
			finalStatusSet = true
		}
		finalStatusText = fullFragment.StatusText()
	}

	accumulatedHeaders := headersPkg.New()

	for _, fragment := range workingFragments {
		if err := responseBuilder.mergeHeaders(accumulatedHeaders, fragment); err != nil {
			return nil, fmt.Errorf("merge headers: %w", err)
		}

		// A present full fragment is authoritative for body and status.
		if fullFragment != nil {
			continue
		}

		if fragment.GetBody().BodyUsed() {
			responseBuilder.logDebug(
				"Skipped a fragment with a consumed body.",
				"message_id", fragment.Id(),
			)
			continue
		}

		source := responseBuilder.resolveFragmentSource(ctx, fragment)
		if source == nil || source.IsEmpty() {
			continue
		}

		// A fragment's status is only adopted together with its body; a
		// status-less winning body leaves the previously adopted status.
		finalSource = source
		if fragment.HasStatus() {
			finalStatus = fragment.Status()
			finalStatusSet = true
			finalStatusText = fragment.StatusText()
		}
	}

	if headerPostProcess := responseBuilder.config.HeaderPostProcess; headerPostProcess != nil {
		processedHeaders, err := headerPostProcess(accumulatedHeaders)
		if err != nil {
			return nil, representationErrors.New(fmt.Errorf("header post process: %w", err))
		}
		if processedHeaders != nil {
			accumulatedHeaders = processedHeaders
		}
	}

	responseOptions := &message.ResponseOptions{
		StatusText: finalStatusText,
		Headers:    accumulatedHeaders,
	}
	if finalStatusSet {
		responseOptions.Status = finalStatus
	}

	var finalBodyInput any
	if finalSource != nil {
		finalBodyInput = finalSource
	}

	builtResponse, err := message.NewResponse(finalBodyInput, responseOptions)
	if err != nil {
		return nil, fmt.Errorf("new response: %w", err)
	}

	responseBuilder.cached = builtResponse
	responseBuilder.dirty = false

	return builtResponse, nil
}
