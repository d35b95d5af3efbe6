package steamweb

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the client. Callers are expected to test for
// them with errors.Is.
var (
	// ErrNoSession indicates an authenticated operation was invoked before a
	// session was established. It is returned before any network call is made.
	ErrNoSession = errors.New("steamweb: no session established")

	// ErrNoCredentials indicates the login endpoint answered without an
	// inline OAuth payload and without transfer data. Retrying (for example
	// after re-prompting for a captcha or a two-factor code) is the caller's
	// decision.
	ErrNoCredentials = errors.New("steamweb: login response contained no credentials")

	// ErrMalformedSession indicates session material whose shape was fine but
	// whose steam id could not be parsed as an unsigned integer.
	ErrMalformedSession = errors.New("steamweb: malformed session")

	// ErrUnsupported marks operations the provider exposes but this client
	// deliberately does not implement end to end.
	ErrUnsupported = errors.New("steamweb: operation not supported")
)

// ProtocolError reports that the server answered, but with an inconsistent
// combination of fields. It is distinct from DecodeError so callers can tell
// "the server answered nonsensically" from "we don't understand the answer".
type ProtocolError struct {
	// Op is the operation during which the inconsistency was observed.
	Op string
	// Reason describes the inconsistency.
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("steamweb %s: protocol error: %s", e.Op, e.Reason)
}

// DecodeError reports a response body that did not match the expected shape.
// The raw body is logged at trace level at the point of failure.
type DecodeError struct {
	// Op is the operation whose response failed to decode.
	Op string
	// Err is the underlying decoding failure.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("steamweb %s: decode response failed: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
