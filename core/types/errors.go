package types

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrPairNotFound is returned when a pair lookup misses after a refresh.
	ErrPairNotFound = errors.New("pair not found")
	// ErrFetchFailed is returned when the pair listing endpoint cannot be
	// reached, answers non-2xx, or returns a malformed payload.
	ErrFetchFailed = errors.New("pair listing fetch failed")
	// ErrInvalidConfiguration is returned for bad runtime configuration,
	// e.g. blend weights that do not sum to 1.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNoSigner is returned when a write operation is requested on a
	// client constructed without a signer.
	ErrNoSigner = errors.New("signer required for write operations")
	// ErrPriceUnavailable is returned when the price source has no price
	// for the requested feed.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrProofUnavailable is returned when a price update proof cannot be
	// obtained. Trade builds fail hard on this: a position must not open
	// without a fresh price attestation.
	ErrProofUnavailable = errors.New("price update proof unavailable")
)

// Trade intent validation failures. Each sits behind a ValidationError so
// callers can both match the class with errors.Is and read the offending
// field/value.
var (
	ErrInvalidAddress    = errors.New("invalid trader address")
	ErrInvalidCollateral = errors.New("invalid collateral")
	ErrInvalidLeverage   = errors.New("invalid leverage")
	ErrInvalidIndex      = errors.New("invalid index")
	ErrInvalidSlippage   = errors.New("invalid slippage")
	ErrInvalidTpSl       = errors.New("invalid take-profit/stop-loss")
)

// ValidationError reports a single failed trade-intent check. Validation is
// first-failure-wins: the engine never aggregates multiple failures.
type ValidationError struct {
	Kind   error // one of the ErrInvalid* sentinels
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s=%v (%s)", e.Kind.Error(), e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// NewValidationError builds a ValidationError for the given sentinel kind.
func NewValidationError(kind error, field string, value any, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Value: value, Reason: reason}
}
