package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/tradeport-labs/gateway/types"
)

// SolanaEndpoint adapts one Solana JSON-RPC node to the Endpoint interface.
type SolanaEndpoint struct {
	url    string
	rpc    *rpc.Client
	logger types.Logger
}

var _ Endpoint = (*SolanaEndpoint)(nil)

// NewSolanaEndpoint creates an endpoint over the given RPC URL. The
// underlying client is lazy; no connection is established here.
func NewSolanaEndpoint(rawURL string, logger types.Logger) *SolanaEndpoint {
	return &SolanaEndpoint{
		url:    rawURL,
		rpc:    rpc.New(rawURL),
		logger: logger,
	}
}

func (e *SolanaEndpoint) URL() string {
	return e.url
}

// SendRawTransaction submits the signed transaction bytes with preflight
// skipped. Preflight simulation runs against a single node's view and would
// defeat the send-to-all redundancy policy.
func (e *SolanaEndpoint) SendRawTransaction(ctx context.Context, signedTx []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(signedTx)
	sig, err := e.rpc.SendEncodedTransactionWithOpts(ctx, encoded, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return "", errors.Wrapf(err, "sendTransaction failed at %s", e.url)
	}
	return sig.String(), nil
}

func (e *SolanaEndpoint) SignatureStatus(ctx context.Context, signature string) (TxStatus, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return TxStatus{}, errors.Wrap(err, "invalid signature")
	}
	out, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return TxStatus{}, errors.Wrapf(err, "getSignatureStatuses failed at %s", e.url)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return TxStatus{Code: TxStatusUnknown}, nil
	}
	st := out.Value[0]
	if st.Err != nil {
		return TxStatus{Code: TxStatusFailed, Reason: fmt.Sprintf("%v", st.Err)}, nil
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return TxStatus{Code: TxStatusConfirmed}, nil
	default:
		return TxStatus{Code: TxStatusProcessing}, nil
	}
}

func (e *SolanaEndpoint) SignatureHistory(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid address")
	}
	out, err := e.rpc.GetSignaturesForAddressWithOpts(ctx, pk, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getSignaturesForAddress failed at %s", e.url)
	}
	infos := make([]SignatureInfo, 0, len(out))
	for _, entry := range out {
		if entry == nil {
			continue
		}
		info := SignatureInfo{Signature: entry.Signature.String()}
		if entry.Err != nil {
			info.Err = fmt.Sprintf("%v", entry.Err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (e *SolanaEndpoint) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := e.rpc.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, errors.Wrapf(err, "getBlockHeight failed at %s", e.url)
	}
	return height, nil
}

func (e *SolanaEndpoint) Balance(ctx context.Context, address string) (*big.Int, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid address")
	}
	out, err := e.rpc.GetBalance(ctx, pk, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, errors.Wrapf(err, "getBalance failed at %s", e.url)
	}
	return new(big.Int).SetUint64(out.Value), nil
}

// BaseFee estimates the current priority fee as the maximum of the node's
// recently observed prioritization fees.
func (e *SolanaEndpoint) BaseFee(ctx context.Context) (uint64, error) {
	fees, err := e.rpc.GetRecentPrioritizationFees(ctx, nil)
	if err != nil {
		return 0, errors.Wrapf(err, "getRecentPrioritizationFees failed at %s", e.url)
	}
	var highest uint64
	for _, f := range fees {
		if f.PrioritizationFee > highest {
			highest = f.PrioritizationFee
		}
	}
	return highest, nil
}
