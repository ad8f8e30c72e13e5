package txmanager

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tradeport-labs/gateway/client"
	"github.com/tradeport-labs/gateway/store/models"
)

type signalKind int

const (
	signalNone signalKind = iota
	signalConfirmed
	signalFailed
)

type confirmSignal struct {
	kind     signalKind
	endpoint string
	reason   string
}

// awaitConfirmation polls until any endpoint reports a terminal state or
// the block-height budget runs out. Individual RPC providers are unreliable
// and inconsistently indexed, so each round races the direct status query
// and a history scan on every endpoint and trusts the first positive
// terminal signal from any source.
//
// On CONFIRMED the fee multiplier relaxes; on expiry it bumps so the caller
// resubmits with a fresh, higher fee. The record is mutated to its terminal
// state; persisting it is the caller's job.
func (tm *txManager) awaitConfirmation(ctx context.Context, record *models.TxRecord) error {
	for {
		signal := tm.pollRound(ctx, record)
		switch signal.kind {
		case signalConfirmed:
			tm.fees.Relax()
			now := time.Now()
			record.State = models.TxStateConfirmed
			record.ConfirmedAt = &now
			record.BalanceAfter = tm.observeBalance(ctx, record.Payer)
			tm.logger.Infow("TxManager: transaction confirmed",
				"signature", record.Signature,
				"endpoint", signal.endpoint,
			)
			return nil
		case signalFailed:
			record.State = models.TxStateFailed
			record.FailureReason = signal.reason
			tm.logger.Warnw("TxManager: transaction rejected by chain",
				"signature", record.Signature,
				"endpoint", signal.endpoint,
				"reason", signal.reason,
			)
			return &ChainError{Endpoint: signal.endpoint, Reason: signal.reason}
		}

		height, err := tm.currentHeight(ctx)
		if err != nil {
			tm.logger.Debugw("TxManager: height check failed, continuing to poll",
				"signature", record.Signature,
				"err", err,
			)
		} else if height > record.LastValidHeight {
			multiplier := tm.fees.Bump()
			record.State = models.TxStateExpired
			tm.logger.Warnw("TxManager: confirmation expired, fee multiplier bumped",
				"signature", record.Signature,
				"height", height,
				"lastValidHeight", record.LastValidHeight,
				"multiplier", multiplier,
			)
			return &ExpiredError{
				Signature:       record.Signature,
				LastValidHeight: record.LastValidHeight,
				ObservedHeight:  height,
			}
		}

		select {
		case <-time.After(tm.config.PollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pollRound returns as soon as any endpoint yields a terminal signal; it
// never waits for the slowest or dead endpoint. Outstanding queries are
// cancelled on return.
func (tm *txManager) pollRound(ctx context.Context, record *models.TxRecord) confirmSignal {
	endpoints := tm.pool.All()

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals := make(chan confirmSignal, len(endpoints)*2)
	var wg sync.WaitGroup
	for _, ep := range endpoints {
		wg.Add(2)
		go func(ep client.Endpoint) {
			defer wg.Done()
			signals <- tm.queryStatus(pollCtx, ep, record.Signature)
		}(ep)
		go func(ep client.Endpoint) {
			defer wg.Done()
			signals <- tm.queryHistory(pollCtx, ep, record)
		}(ep)
	}
	go func() {
		wg.Wait()
		close(signals)
	}()

	for signal := range signals {
		if signal.kind != signalNone {
			return signal
		}
	}
	return confirmSignal{kind: signalNone}
}

func (tm *txManager) queryStatus(ctx context.Context, ep client.Endpoint, signature string) confirmSignal {
	queryCtx := ctx
	cancel := context.CancelFunc(func() {})
	if tm.config.RequestTimeout > 0 {
		queryCtx, cancel = context.WithTimeout(ctx, tm.config.RequestTimeout)
	}
	defer cancel()

	status, err := ep.SignatureStatus(queryCtx, signature)
	if err != nil {
		// Transient endpoint trouble is raced away, never surfaced alone.
		tm.logger.Tracew("TxManager: status query failed",
			"endpoint", ep.URL(),
			"err", err,
		)
		return confirmSignal{kind: signalNone}
	}
	switch status.Code {
	case client.TxStatusConfirmed:
		return confirmSignal{kind: signalConfirmed, endpoint: ep.URL()}
	case client.TxStatusFailed:
		return confirmSignal{kind: signalFailed, endpoint: ep.URL(), reason: status.Reason}
	default:
		return confirmSignal{kind: signalNone}
	}
}

// queryHistory scans the payer's recent transactions for the signature.
// Some endpoints index history faster than they serve status queries, which
// catches confirmations a silently-stuck status report would miss.
func (tm *txManager) queryHistory(ctx context.Context, ep client.Endpoint, record *models.TxRecord) confirmSignal {
	queryCtx := ctx
	cancel := context.CancelFunc(func() {})
	if tm.config.RequestTimeout > 0 {
		queryCtx, cancel = context.WithTimeout(ctx, tm.config.RequestTimeout)
	}
	defer cancel()

	infos, err := ep.SignatureHistory(queryCtx, record.Payer, tm.config.HistoryLookupDepth)
	if err != nil {
		if !errors.Is(err, client.ErrHistoryNotSupported) {
			tm.logger.Tracew("TxManager: history query failed",
				"endpoint", ep.URL(),
				"err", err,
			)
		}
		return confirmSignal{kind: signalNone}
	}
	for _, info := range infos {
		if info.Signature != record.Signature {
			continue
		}
		if info.Err != "" {
			return confirmSignal{kind: signalFailed, endpoint: ep.URL(), reason: info.Err}
		}
		return confirmSignal{kind: signalConfirmed, endpoint: ep.URL()}
	}
	return confirmSignal{kind: signalNone}
}
