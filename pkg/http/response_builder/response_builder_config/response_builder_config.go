package response_builder_config

import (
	"log/slog"

	headersPkg "github.com/Motmedel/http_representation/pkg/http/types/headers"
)

type HeaderPostProcessor func(accumulatedHeaders *headersPkg.Headers) (*headersPkg.Headers, error)

type Option func(*Config)

var DefaultEntityHeaderNames = []string{
	"content-type",
	"content-length",
	"content-encoding",
	"content-disposition",
	"content-language",
	"content-location",
}

type Config struct {
	IgnoreSubsequentFullResponses  bool
	ReplaceSubsequentFullResponses bool
	DisableReadableCheck           bool
	UseSetForEntityHeaders         bool
	EntityHeaderNames              []string
	HeaderPostProcess              HeaderPostProcessor
	Logger                         *slog.Logger
}

func New(options ...Option) *Config {
	config := &Config{
		EntityHeaderNames: DefaultEntityHeaderNames,
	}

	for _, option := range options {
		if option != nil {
			option(config)
		}
	}

	return config
}

func WithIgnoreSubsequentFullResponses() Option {
	return func(config *Config) {
		config.IgnoreSubsequentFullResponses = true
	}
}

func WithReplaceSubsequentFullResponses() Option {
	return func(config *Config) {
		config.ReplaceSubsequentFullResponses = true
	}
}

func WithDisableReadableCheck() Option {
	return func(config *Config) {
		config.DisableReadableCheck = true
	}
}

func WithSetForEntityHeaders(names ...string) Option {
	return func(config *Config) {
		config.UseSetForEntityHeaders = true
		if len(names) != 0 {
			config.EntityHeaderNames = names
		}
	}
}

func WithHeaderPostProcess(headerPostProcessor HeaderPostProcessor) Option {
	return func(config *Config) {
		config.HeaderPostProcess = headerPostProcessor
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(config *Config) {
		config.Logger = logger
	}
}
