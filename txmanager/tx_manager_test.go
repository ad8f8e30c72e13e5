package txmanager_test

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeport-labs/gateway/client"
	gwTesting "github.com/tradeport-labs/gateway/internal/testing"
	"github.com/tradeport-labs/gateway/store/models"
	"github.com/tradeport-labs/gateway/txmanager"
	"github.com/tradeport-labs/gateway/types"
)

const testPayer = "payer-address"

var testPayload = []byte("signed transaction bytes")

type fixture struct {
	endpoints []*gwTesting.FakeEndpoint
	fees      *txmanager.FeeController
	config    *types.Config
	manager   txmanager.TxManager
}

func newFixture(t *testing.T, endpoints ...*gwTesting.FakeEndpoint) *fixture {
	t.Helper()

	eps := make([]client.Endpoint, len(endpoints))
	for i, ep := range endpoints {
		if ep.Name == "" {
			ep.Name = fmt.Sprintf("fake://%d", i+1)
		}
		eps[i] = ep
	}
	pool, err := client.NewPool(eps)
	require.NoError(t, err)

	config := gwTesting.NewConfig(t)
	fees := txmanager.NewFeeController()
	manager := txmanager.NewTxManager(pool, gwTesting.NewStore(t), fees, nil, config)
	return &fixture{
		endpoints: endpoints,
		fees:      fees,
		config:    config,
		manager:   manager,
	}
}

func confirmedStatus(ctx context.Context, signature string) (client.TxStatus, error) {
	return client.TxStatus{Code: client.TxStatusConfirmed}, nil
}

func hangingStatus(ctx context.Context, signature string) (client.TxStatus, error) {
	return client.TxStatus{}, gwTesting.Hang(ctx)
}

func TestSubmitAndConfirm_FirstPositiveSignalWins(t *testing.T) {
	// Endpoint 2 confirms immediately; endpoints 1 and 3 never respond.
	ep1 := &gwTesting.FakeEndpoint{StatusFn: hangingStatus}
	ep2 := &gwTesting.FakeEndpoint{StatusFn: confirmedStatus}
	ep3 := &gwTesting.FakeEndpoint{StatusFn: hangingStatus}
	f := newFixture(t, ep1, ep2, ep3)

	start := time.Now()
	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.NoError(t, err)

	assert.Equal(t, models.TxStateConfirmed, record.State)
	assert.Equal(t, gwTesting.DeterministicSignature(testPayload), record.Signature)
	assert.Len(t, record.AcceptedBy, 3)
	// It must not have waited on the dead endpoints.
	assert.Less(t, time.Since(start), f.config.RequestTimeout)
}

func TestSubmitAndConfirm_SignatureMismatchIsFatal(t *testing.T) {
	ep1 := &gwTesting.FakeEndpoint{}
	ep2 := &gwTesting.FakeEndpoint{
		SendFn: func(ctx context.Context, signedTx []byte) (string, error) {
			return "sig-divergent", nil
		},
	}
	f := newFixture(t, ep1, ep2)

	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.Error(t, err)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, txmanager.ErrSignatureMismatch)
}

func TestSubmitAndConfirm_AllSendsFailing(t *testing.T) {
	reject := func(ctx context.Context, signedTx []byte) (string, error) {
		return "", errors.New("node unavailable")
	}
	f := newFixture(t,
		&gwTesting.FakeEndpoint{SendFn: reject},
		&gwTesting.FakeEndpoint{SendFn: reject},
		&gwTesting.FakeEndpoint{SendFn: reject},
	)

	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.Error(t, err)
	assert.Nil(t, record)

	var broadcastErr *txmanager.BroadcastError
	require.ErrorAs(t, err, &broadcastErr)
	assert.Len(t, broadcastErr.Errors(), 3)
}

func TestSubmitAndConfirm_ChainReportedFailureShortCircuits(t *testing.T) {
	ep1 := &gwTesting.FakeEndpoint{
		StatusFn: func(ctx context.Context, signature string) (client.TxStatus, error) {
			return client.TxStatus{Code: client.TxStatusFailed, Reason: "insufficient funds"}, nil
		},
	}
	ep2 := &gwTesting.FakeEndpoint{StatusFn: hangingStatus}
	f := newFixture(t, ep1, ep2)

	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.Error(t, err)

	var chainErr *txmanager.ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, "insufficient funds", chainErr.Reason)
	assert.Equal(t, models.TxStateFailed, record.State)
	assert.Equal(t, "insufficient funds", record.FailureReason)
}

func TestSubmitAndConfirm_ExpiryBumpsFeeMultiplier(t *testing.T) {
	pastBudget := func(ctx context.Context) (uint64, error) {
		return 200, nil
	}
	f := newFixture(t,
		&gwTesting.FakeEndpoint{HeightFn: pastBudget},
		&gwTesting.FakeEndpoint{HeightFn: pastBudget},
	)

	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 50)
	require.Error(t, err)

	var expiredErr *txmanager.ExpiredError
	require.ErrorAs(t, err, &expiredErr)
	assert.Equal(t, uint64(50), expiredErr.LastValidHeight)
	assert.Equal(t, models.TxStateExpired, record.State)
	assert.Equal(t, int64(4), f.fees.Multiplier())
}

func TestSubmitAndConfirm_ConfirmsViaHistoryLookup(t *testing.T) {
	signature := gwTesting.DeterministicSignature(testPayload)
	ep1 := &gwTesting.FakeEndpoint{}
	ep2 := &gwTesting.FakeEndpoint{
		HistoryFn: func(ctx context.Context, address string, limit int) ([]client.SignatureInfo, error) {
			return []client.SignatureInfo{{Signature: signature}}, nil
		},
	}
	f := newFixture(t, ep1, ep2)

	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.NoError(t, err)
	assert.Equal(t, models.TxStateConfirmed, record.State)
}

func TestSubmitAndConfirm_HistoryReportedFailure(t *testing.T) {
	signature := gwTesting.DeterministicSignature(testPayload)
	ep := &gwTesting.FakeEndpoint{
		HistoryFn: func(ctx context.Context, address string, limit int) ([]client.SignatureInfo, error) {
			return []client.SignatureInfo{{Signature: signature, Err: "InstructionError"}}, nil
		},
	}
	f := newFixture(t, ep)

	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.Error(t, err)

	var chainErr *txmanager.ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, models.TxStateFailed, record.State)
}

func TestSubmitAndConfirm_EndToEndConfirmsAfterTwoRounds(t *testing.T) {
	// Endpoint 1 confirms on its third status query: two full poll sleeps
	// elapse first. FeeController relaxes exactly once on success.
	var statusCalls atomic.Int32
	ep1 := &gwTesting.FakeEndpoint{
		StatusFn: func(ctx context.Context, signature string) (client.TxStatus, error) {
			if statusCalls.Add(1) >= 3 {
				return client.TxStatus{Code: client.TxStatusConfirmed}, nil
			}
			return client.TxStatus{Code: client.TxStatusProcessing}, nil
		},
	}
	ep2 := &gwTesting.FakeEndpoint{}
	ep3 := &gwTesting.FakeEndpoint{}
	f := newFixture(t, ep1, ep2, ep3)

	f.fees.Bump() // multiplier 4, so the single relax is observable

	start := time.Now()
	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.Equal(t, models.TxStateConfirmed, record.State)
	assert.Equal(t, int64(3), f.fees.Multiplier())
	assert.GreaterOrEqual(t, elapsed, 2*f.config.PollInterval)
	assert.Less(t, elapsed, 20*f.config.PollInterval)

	stored, err := f.manager.GetRecord(record.Signature)
	require.NoError(t, err)
	assert.Equal(t, models.TxStateConfirmed, stored.State)
}

func TestSubmitAndConfirm_RecordsBalanceDelta(t *testing.T) {
	balance := atomic.Int64{}
	balance.Store(1_000_000)
	ep := &gwTesting.FakeEndpoint{
		StatusFn: confirmedStatus,
		BalanceFn: func(ctx context.Context, address string) (*big.Int, error) {
			return big.NewInt(balance.Load()), nil
		},
	}
	f := newFixture(t, ep)

	// The confirmed transaction costs 5000 base units.
	go func() {
		time.Sleep(5 * time.Millisecond)
		balance.Store(995_000)
	}()
	// Balance is observed before broadcast and again after confirmation;
	// the poll interval gives the debit time to land.
	f.config.PollInterval = 20 * time.Millisecond

	record, err := f.manager.SubmitAndConfirm(context.Background(), testPayload, testPayer, 100)
	require.NoError(t, err)
	require.Equal(t, models.TxStateConfirmed, record.State)
	assert.NotEmpty(t, record.BalanceBefore)
	assert.NotEmpty(t, record.BalanceAfter)
}

func TestBalances_RunsBatched(t *testing.T) {
	balanceOf := func(ctx context.Context, address string) (*big.Int, error) {
		var n int
		_, err := fmt.Sscanf(address, "addr-%d", &n)
		if err != nil {
			return nil, err
		}
		return big.NewInt(int64(n * 100)), nil
	}
	f := newFixture(t,
		&gwTesting.FakeEndpoint{BalanceFn: balanceOf},
		&gwTesting.FakeEndpoint{BalanceFn: balanceOf},
	)
	f.config.BatchSize = 3

	addresses := make([]string, 10)
	for i := range addresses {
		addresses[i] = fmt.Sprintf("addr-%d", i)
	}
	balances, err := f.manager.Balances(context.Background(), addresses)
	require.NoError(t, err)
	require.Len(t, balances, 10)
	for i, b := range balances {
		assert.Equal(t, int64(i*100), b.Int64())
	}
}

func TestEffectiveFee_AppliesMultiplier(t *testing.T) {
	ep := &gwTesting.FakeEndpoint{
		BaseFeeFn: func(ctx context.Context) (uint64, error) {
			return 100, nil
		},
	}
	f := newFixture(t, ep)

	fee, err := f.manager.EffectiveFee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), fee)

	f.fees.Bump()
	fee, err = f.manager.EffectiveFee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(400), fee)
}
