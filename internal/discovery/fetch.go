package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Catalog is the studio source. Implementations may be slow or fail; the
// engine treats any error as zero results that can be retried.
type Catalog interface {
	FetchStudios(ctx context.Context, q QueryParams) ([]*Studio, error)
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(ctx context.Context, q QueryParams) ([]*Studio, error)

func (f CatalogFunc) FetchStudios(ctx context.Context, q QueryParams) ([]*Studio, error) {
	return f(ctx, q)
}

// ResultStatus distinguishes an empty list caused by a failed fetch from an
// empty list caused by the filters.
type ResultStatus string

const (
	StatusIdle      ResultStatus = "idle"
	StatusLoading   ResultStatus = "loading"
	StatusReady     ResultStatus = "ready"
	StatusNoMatches ResultStatus = "no_matches"
	StatusErrored   ResultStatus = "errored"
)

type FetchErrorKind string

const (
	FetchTimeout     FetchErrorKind = "timeout"
	FetchUnavailable FetchErrorKind = "unavailable"
	FetchBadResponse FetchErrorKind = "bad_response"
	FetchCanceled    FetchErrorKind = "canceled"
)

// FetchError describes a failed catalog call. Every kind is retryable.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Retryable() bool { return true }

// ClassifyFetchError wraps err in a FetchError unless it already is one.
func ClassifyFetchError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &FetchError{Kind: FetchTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &FetchError{Kind: FetchCanceled, Err: err}
	default:
		return &FetchError{Kind: FetchUnavailable, Err: err}
	}
}

// FetchSequencer numbers catalog requests. Only the response to the most
// recently issued request may be applied; earlier ones are stale no matter
// when they arrive.
type FetchSequencer struct {
	issued atomic.Uint64
}

// Next issues a new request number, superseding all earlier ones.
func (s *FetchSequencer) Next() uint64 {
	return s.issued.Add(1)
}

// Current reports whether seq is still the latest request.
func (s *FetchSequencer) Current(seq uint64) bool {
	return seq != 0 && s.issued.Load() == seq
}

func (s *FetchSequencer) Latest() uint64 {
	return s.issued.Load()
}
