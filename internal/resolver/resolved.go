// Package resolver memoizes the auxiliary reads projection rules depend on:
// on-chain parameter fetches and off-chain metadata lookups. Results are
// tri-state so callers can tell "genuinely absent" apart from "could not
// check" and degrade accordingly.
package resolver

import "errors"

// ErrUnavailable marks an auxiliary read that failed transiently. Handlers
// that cannot proceed without the value abort their single event; redelivery
// retries the read.
var ErrUnavailable = errors.New("resolver unavailable")

// Status classifies a lookup outcome.
type Status int

const (
	// StatusFound means the source returned a value.
	StatusFound Status = iota
	// StatusNotFound means the source answered and the value does not exist.
	// Negative results are cacheable.
	StatusNotFound
	// StatusUnavailable means the source could not be consulted. Never cached.
	StatusUnavailable
)

// Resolved is the outcome of an auxiliary lookup.
type Resolved[T any] struct {
	Status Status
	Value  T
}

func Found[T any](value T) Resolved[T] {
	return Resolved[T]{Status: StatusFound, Value: value}
}

func NotFound[T any]() Resolved[T] {
	return Resolved[T]{Status: StatusNotFound}
}

func Unavailable[T any]() Resolved[T] {
	return Resolved[T]{Status: StatusUnavailable}
}

// ValueOr returns the resolved value, or fallback when nothing was found.
func (r Resolved[T]) ValueOr(fallback T) T {
	if r.Status == StatusFound {
		return r.Value
	}
	return fallback
}
