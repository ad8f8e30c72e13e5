package txmanager

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/tradeport-labs/gateway/client"
	"github.com/tradeport-labs/gateway/executor"
	esStore "github.com/tradeport-labs/gateway/store"
	"github.com/tradeport-labs/gateway/store/models"
	"github.com/tradeport-labs/gateway/types"
)

// TxManager submits signed transactions across a pool of unreliable RPC
// endpoints and tracks them to a terminal confirmation state.
//
// Submission does not guarantee inclusion: a transaction can be evicted from
// mempools, endpoints can go offline, fees can be outbid. What TxManager
// guarantees is that every submission ends in exactly one of confirmed,
// failed, or expired, that a fatal endpoint disagreement is surfaced rather
// than papered over, and that the fee multiplier reflects recent
// confirmation outcomes.
type TxManager interface {
	// SubmitAndConfirm broadcasts the signed bytes to every pooled endpoint
	// and polls until finality, chain-reported failure, or block-height
	// expiry. The returned record carries the terminal state; the error (if
	// any) is a *BroadcastError, ErrSignatureMismatch, *ChainError or
	// *ExpiredError. lastValidHeight of 0 means "submission height plus the
	// configured margin".
	SubmitAndConfirm(ctx context.Context, signedTx []byte, payer string, lastValidHeight uint64) (*models.TxRecord, error)

	// Balances fetches native balances for many addresses with bounded
	// concurrency.
	Balances(ctx context.Context, addresses []string) ([]*big.Int, error)

	// EffectiveFee is the current base fee estimate scaled by the shared fee
	// multiplier.
	EffectiveFee(ctx context.Context) (uint64, error)

	GetRecord(signature string) (*models.TxRecord, error)
	GetRecordsByPayer(payer string) ([]*models.TxRecord, error)
}

type txManager struct {
	pool    *client.Pool
	store   esStore.Store
	fees    *FeeController
	heights HeightSource
	config  *types.Config
	logger  types.Logger
}

var _ TxManager = (*txManager)(nil)

// NewTxManager returns a TxManager for one network. heights may be nil, in
// which case every height check queries the endpoints directly.
func NewTxManager(
	pool *client.Pool,
	store esStore.Store,
	fees *FeeController,
	heights HeightSource,
	config *types.Config) TxManager {
	return &txManager{
		pool:    pool,
		store:   store,
		fees:    fees,
		heights: heights,
		config:  config,
		logger:  config.Logger,
	}
}

func (tm *txManager) retryPolicy() executor.RetryPolicy {
	return executor.RetryPolicy{
		MaxRetries: tm.config.MaxRetries,
		RetryDelay: tm.config.RetryDelay,
		Timeout:    tm.config.RequestTimeout,
	}
}

func (tm *txManager) batchPolicy() executor.BatchPolicy {
	return executor.BatchPolicy{
		BatchSize:       tm.config.BatchSize,
		InterBatchDelay: tm.config.InterBatchDelay,
	}
}

func (tm *txManager) SubmitAndConfirm(ctx context.Context, signedTx []byte, payer string, lastValidHeight uint64) (*models.TxRecord, error) {
	const errStr = "SubmitAndConfirm failed"

	// Balance and height observations before broadcast are best effort; a
	// submission must not fail because a read-only probe did.
	balanceBefore := tm.observeBalance(ctx, payer)
	submittedHeight, err := tm.currentHeight(ctx)
	if err != nil {
		tm.logger.Debugw("TxManager: could not observe submission height",
			"err", err,
		)
	}
	if lastValidHeight == 0 {
		lastValidHeight = submittedHeight + tm.config.ExpiryMarginBlocks
	}

	result, err := tm.broadcastToAll(ctx, signedTx)
	if err != nil {
		return nil, err
	}

	record := &models.TxRecord{
		Signature:       result.Signature,
		Payer:           payer,
		Network:         tm.config.Network,
		AcceptedBy:      result.AcceptedBy,
		State:           models.TxStatePending,
		SubmittedHeight: submittedHeight,
		LastValidHeight: lastValidHeight,
		BalanceBefore:   balanceBefore,
		CreatedAt:       time.Now(),
	}
	if putErr := tm.store.PutTxRecord(record); putErr != nil {
		return nil, errors.Wrap(putErr, errStr)
	}

	confirmErr := tm.awaitConfirmation(ctx, record)
	if putErr := tm.store.PutTxRecord(record); putErr != nil {
		tm.logger.Errorw("TxManager: could not persist terminal record",
			"signature", record.Signature,
			"err", putErr,
		)
	}
	return record, confirmErr
}

func (tm *txManager) Balances(ctx context.Context, addresses []string) ([]*big.Int, error) {
	return executor.RunBatched(ctx, tm.batchPolicy(), addresses, func(ctx context.Context, address string) (*big.Int, error) {
		return executor.Retry(ctx, tm.retryPolicy(), func(ctx context.Context) (*big.Int, error) {
			return tm.pool.Next().Balance(ctx, address)
		})
	})
}

func (tm *txManager) EffectiveFee(ctx context.Context) (uint64, error) {
	base, err := queryFirst(ctx, tm.pool.All(), tm.config.RequestTimeout, func(ctx context.Context, ep client.Endpoint) (uint64, error) {
		return ep.BaseFee(ctx)
	})
	if err != nil {
		return 0, errors.Wrap(err, "EffectiveFee failed")
	}
	return tm.fees.Effective(base), nil
}

func (tm *txManager) GetRecord(signature string) (*models.TxRecord, error) {
	return tm.store.GetTxRecord(signature)
}

func (tm *txManager) GetRecordsByPayer(payer string) ([]*models.TxRecord, error) {
	return tm.store.GetTxRecordsByPayer(payer)
}

// observeBalance reads the payer balance from whichever endpoint answers
// first, returning "" when none does.
func (tm *txManager) observeBalance(ctx context.Context, payer string) string {
	balance, err := queryFirst(ctx, tm.pool.All(), tm.config.RequestTimeout, func(ctx context.Context, ep client.Endpoint) (*big.Int, error) {
		return ep.Balance(ctx, payer)
	})
	if err != nil {
		tm.logger.Debugw("TxManager: balance observation failed",
			"payer", payer,
			"err", err,
		)
		return ""
	}
	return balance.String()
}

func (tm *txManager) currentHeight(ctx context.Context) (uint64, error) {
	if tm.heights != nil {
		if height, ok := tm.heights.Latest(); ok {
			return height, nil
		}
	}
	return queryFirst(ctx, tm.pool.All(), tm.config.RequestTimeout, func(ctx context.Context, ep client.Endpoint) (uint64, error) {
		return ep.BlockHeight(ctx)
	})
}
