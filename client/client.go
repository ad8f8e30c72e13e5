package client

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

// ErrHistoryNotSupported is returned by endpoints whose RPC surface cannot
// look up past transactions by address. The confirmer treats it as silence,
// not as a poll failure.
var ErrHistoryNotSupported = errors.New("signature history lookup not supported by this endpoint")

// TxStatusCode is the coarse status an endpoint reports for a submitted
// transaction signature.
type TxStatusCode int

const (
	// TxStatusUnknown means the endpoint has no record of the signature yet.
	TxStatusUnknown TxStatusCode = iota
	// TxStatusProcessing means the transaction is known but not yet final.
	TxStatusProcessing
	// TxStatusConfirmed means the endpoint reports the transaction as
	// confirmed or finalized.
	TxStatusConfirmed
	// TxStatusFailed means the endpoint explicitly reports the transaction
	// as rejected or reverted. Reason carries the endpoint's explanation.
	TxStatusFailed
)

// TxStatus is the result of a signature status query at one endpoint.
type TxStatus struct {
	Code   TxStatusCode
	Reason string
}

// Terminal reports whether the status can no longer change.
func (s TxStatus) Terminal() bool {
	return s.Code == TxStatusConfirmed || s.Code == TxStatusFailed
}

// SignatureInfo is one entry of an address' transaction history.
type SignatureInfo struct {
	Signature string
	// Err is non-empty if the chain recorded the transaction as failed.
	Err string
}

// Endpoint is an opaque handle to one RPC connection. Implementations are
// thin pass-through adapters over chain SDKs; the submission core never
// inspects chain-specific types. An Endpoint is owned by the Pool that was
// constructed with it and is immutable after construction.
type Endpoint interface {
	// URL identifies the endpoint for logging and record keeping.
	URL() string

	// SendRawTransaction submits a fully signed, serialized transaction and
	// returns the signature/hash the endpoint derived from it.
	SendRawTransaction(ctx context.Context, signedTx []byte) (string, error)

	// SignatureStatus queries the current status of a signature.
	SignatureStatus(ctx context.Context, signature string) (TxStatus, error)

	// SignatureHistory returns up to limit recent transactions involving the
	// address, newest first. Returns ErrHistoryNotSupported where the chain
	// RPC has no such index.
	SignatureHistory(ctx context.Context, address string, limit int) ([]SignatureInfo, error)

	// BlockHeight returns the endpoint's view of the current block height.
	BlockHeight(ctx context.Context) (uint64, error)

	// Balance returns the native-token balance of the address in base units.
	Balance(ctx context.Context, address string) (*big.Int, error)

	// BaseFee returns the endpoint's current base priority-fee estimate.
	BaseFee(ctx context.Context) (uint64, error)
}
