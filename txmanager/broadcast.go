package txmanager

import (
	"context"

	"github.com/tradeport-labs/gateway/client"
	"github.com/tradeport-labs/gateway/executor"
)

// broadcastResult is produced when every parallel send that succeeded
// returned the same signature.
type broadcastResult struct {
	Signature  string
	AcceptedBy []string
}

// broadcastToAll fans the raw signed bytes out to every pooled endpoint
// concurrently. One accepting endpoint is enough; it is fatal if all sends
// fail, and fatal if accepting endpoints disagree on the signature, since
// chains derive the signature deterministically from identical signed bytes
// and a divergence means payload corruption.
func (tm *txManager) broadcastToAll(ctx context.Context, signedTx []byte) (*broadcastResult, error) {
	endpoints := tm.pool.All()

	type sendOutcome struct {
		url       string
		signature string
		err       error
	}
	outcomes := make(chan sendOutcome, len(endpoints))
	for _, ep := range endpoints {
		go func(ep client.Endpoint) {
			sig, err := executor.Retry(ctx, tm.retryPolicy(), func(ctx context.Context) (string, error) {
				return ep.SendRawTransaction(ctx, signedTx)
			})
			outcomes <- sendOutcome{url: ep.URL(), signature: sig, err: err}
		}(ep)
	}

	var (
		signature  string
		acceptedBy []string
		sendErrs   []error
	)
	for range endpoints {
		out := <-outcomes
		if out.err != nil {
			tm.logger.Debugw("TxManager: endpoint rejected send",
				"endpoint", out.url,
				"err", out.err,
			)
			sendErrs = append(sendErrs, out.err)
			continue
		}
		if signature != "" && out.signature != signature {
			tm.logger.Errorw("TxManager: endpoints disagree on signature",
				"endpoint", out.url,
				"signature", out.signature,
				"expected", signature,
			)
			return nil, ErrSignatureMismatch
		}
		signature = out.signature
		acceptedBy = append(acceptedBy, out.url)
	}

	if len(acceptedBy) == 0 {
		return nil, newBroadcastError(sendErrs)
	}
	tm.logger.Debugw("TxManager: broadcast accepted",
		"signature", signature,
		"endpoints", len(acceptedBy),
	)
	return &broadcastResult{Signature: signature, AcceptedBy: acceptedBy}, nil
}
