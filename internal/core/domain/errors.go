package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown content type or storage backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Proposal generation and follow-up chat are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline errors. Services wrap the underlying cause with one of these
	// so callers can tell which stage failed.

	// ErrExtraction indicates a document could not be turned into text.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates the remote embedding call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStorage indicates object storage or the datastore rejected an operation.
	ErrStorage = errors.New("storage failed")

	// ErrGeneration indicates the remote text generation call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyGeneration indicates the generator answered with no text.
	ErrEmptyGeneration = fmt.Errorf("%w: empty response", ErrGeneration)

	// Session errors.

	// ErrNoProposal indicates a follow-up was sent before any proposal exists.
	ErrNoProposal = errors.New("no proposal yet: submit a request first")

	// ErrSessionClosed indicates the session has been torn down.
	ErrSessionClosed = errors.New("session closed")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
