package esdsl

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/request"
	"github.com/kailas-cloud/esdsl/response"
)

// Sentinel errors for use with errors.Is.
var (
	ErrValidation             = domain.ErrValidation
	ErrRequestConversion      = domain.ErrRequestConversion
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbedderNotConfigured  = domain.ErrEmbedderNotConfigured
	ErrNoBody                 = request.ErrNoBody

	ErrInvalidJSON        = codec.ErrInvalidJSON
	ErrNotObject          = codec.ErrNotObject
	ErrKeyNotFound        = codec.ErrKeyNotFound
	ErrTypeMismatch       = codec.ErrTypeMismatch
	ErrUnrecognizedTag    = codec.ErrUnrecognizedTag
	ErrUnresolvable       = codec.ErrUnresolvable
	ErrNotSingleKeyObject = codec.ErrNotSingleKeyObject
)

// Error types for use with errors.As.
type (
	MissingRequiredFieldError      = domain.MissingRequiredFieldError
	AtLeastOneFieldRequiredError   = domain.AtLeastOneFieldRequiredError
	AtLeastOneElementRequiredError = domain.AtLeastOneElementRequiredError
	InvalidFieldError              = domain.InvalidFieldError
	RequestConversionError         = domain.RequestConversionError
	UnrecognizedVariantTagError    = codec.UnrecognizedVariantTagError
	UnresolvableVariantError       = codec.UnresolvableVariantError
	DecodeError                    = codec.DecodeError
	SerializationError             = request.SerializationError
	ResponseError                  = response.Error
)

// Embedder turns text into a vector for kNN queries.
type Embedder = domain.Embedder

// EmbeddingResult is what an Embedder returns.
type EmbeddingResult = domain.EmbeddingResult
