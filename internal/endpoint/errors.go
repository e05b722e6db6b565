package endpoint

import "errors"

// Failure kinds reported by dispatch and decoding. Callers match them with
// errors.Is; every returned error wraps exactly one of these.
var (
	// ErrTransport covers any failure to complete the HTTP round trip:
	// the POST could not be sent, the connection dropped, or the response
	// body could not be read.
	ErrTransport = errors.New("transport failure")

	// ErrOutOfBounds means the response text is too short for fixed-offset
	// quantity extraction.
	ErrOutOfBounds = errors.New("response too short for quantity extraction")

	// ErrMalformed means the response text is not valid JSON.
	ErrMalformed = errors.New("response is not valid JSON")

	// ErrInvalidResponse means the JSON parsed but the result field is
	// missing or not of the expected shape.
	ErrInvalidResponse = errors.New("unexpected response shape")

	// ErrParse means a hex quantity failed to parse as base-16.
	ErrParse = errors.New("invalid hex quantity")
)
