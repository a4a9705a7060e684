package services

import "errors"

// ErrNotFound covers both "the object does not exist" and "the requester
// may not see it". The two cases are deliberately indistinguishable at the
// API boundary so existence never leaks through error codes.
var ErrNotFound = errors.New("resource not found")

// ErrMalformedPayload marks a federation payload that is missing required
// fields or carries values that cannot be parsed.
var ErrMalformedPayload = errors.New("malformed payload")

// ErrUpstreamDelivery marks a synchronous federation call whose failure is
// surfaced to the caller, which only happens when a local author follows a
// remote one and the peer cannot be reached.
var ErrUpstreamDelivery = errors.New("upstream delivery failed")
