package domain

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the parsing service could not be reached or refused the request.
	ErrUpstreamUnavailable = errors.New("upstream parser unavailable")
	// ErrUpstreamMalformedResponse is returned when the parsing service answered with an undecodable document.
	ErrUpstreamMalformedResponse = errors.New("upstream parser returned malformed document")
	// ErrPersistence is returned when a storage read or write fails.
	ErrPersistence = errors.New("persistence failure")
)
