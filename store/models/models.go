package models

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// TxState is the lifecycle state of a submitted transaction. A record is
// created pending and transitions once, terminally; it never reverts.
type TxState string

const (
	TxStatePending   = TxState("pending")
	TxStateConfirmed = TxState("confirmed")
	TxStateFailed    = TxState("failed")
	TxStateExpired   = TxState("expired")
)

// Terminal reports whether the state can no longer change.
func (s TxState) Terminal() bool {
	return s == TxStateConfirmed || s == TxStateFailed || s == TxStateExpired
}

// TxRecord is the process-lifetime record of one broadcast transaction.
// Balances are stored as decimal strings in base units to keep the record
// codec-friendly.
type TxRecord struct {
	Signature string
	Payer     string
	Network   string

	// AcceptedBy lists the endpoint URLs whose send returned the signature.
	AcceptedBy []string

	State         TxState
	FailureReason string

	SubmittedHeight uint64
	LastValidHeight uint64

	BalanceBefore string
	BalanceAfter  string

	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// BalanceDelta returns the observed payer balance change across the
// transaction, if both observations were captured.
func (r *TxRecord) BalanceDelta() (*big.Int, bool) {
	if r.BalanceBefore == "" || r.BalanceAfter == "" {
		return nil, false
	}
	before, okB := new(big.Int).SetString(r.BalanceBefore, 10)
	after, okA := new(big.Int).SetString(r.BalanceAfter, 10)
	if !okB || !okA {
		return nil, false
	}
	return new(big.Int).Sub(after, before), true
}

// Quote is a previously computed trade quote held for the two-step
// quote-then-execute flow.
type Quote struct {
	Network   string
	Connector string
	Base      string
	Quote     string
	Side      string
	Amount    decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
}
