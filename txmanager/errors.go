package txmanager

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ErrSignatureMismatch indicates endpoints derived different signatures from
// identical signed bytes. That is a consistency bug between endpoints, never
// resolved by picking one.
var ErrSignatureMismatch = errors.New("signature mismatch between endpoints")

// BroadcastError means every endpoint rejected the send. It is fatal:
// resubmission requires a freshly signed payload, which is the caller's
// authority, not ours.
type BroadcastError struct {
	combined error
}

func newBroadcastError(errs []error) *BroadcastError {
	return &BroadcastError{combined: multierr.Combine(errs...)}
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("broadcast failed at every endpoint: %v", e.combined)
}

// Errors returns the per-endpoint send errors.
func (e *BroadcastError) Errors() []error {
	return multierr.Errors(e.combined)
}

func (e *BroadcastError) Unwrap() error {
	return e.combined
}

// ChainError is a transaction failure explicitly reported by an endpoint.
// A definitive error from one honest endpoint is trusted over silence from
// the others and short-circuits polling.
type ChainError struct {
	Endpoint string
	Reason   string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("transaction rejected by chain (via %s): %s", e.Endpoint, e.Reason)
}

// ExpiredError means the block-height budget was exhausted with no terminal
// signal. The fee multiplier has already been bumped; the caller should
// rebuild the transaction with a fresh fee and resubmit.
type ExpiredError struct {
	Signature       string
	LastValidHeight uint64
	ObservedHeight  uint64
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("confirmation of %s expired: chain height %d passed last valid height %d; resubmit with a higher fee",
		e.Signature, e.ObservedHeight, e.LastValidHeight)
}
