package testing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"sync/atomic"

	"github.com/tradeport-labs/gateway/client"
)

// FakeEndpoint is a scriptable client.Endpoint. Unset functions fall back
// to benign defaults: sends succeed with a signature derived from the
// payload, statuses are unknown, histories are empty.
type FakeEndpoint struct {
	Name string

	SendFn    func(ctx context.Context, signedTx []byte) (string, error)
	StatusFn  func(ctx context.Context, signature string) (client.TxStatus, error)
	HistoryFn func(ctx context.Context, address string, limit int) ([]client.SignatureInfo, error)
	HeightFn  func(ctx context.Context) (uint64, error)
	BalanceFn func(ctx context.Context, address string) (*big.Int, error)
	BaseFeeFn func(ctx context.Context) (uint64, error)

	sendCalls    atomic.Int32
	statusCalls  atomic.Int32
	historyCalls atomic.Int32
	heightCalls  atomic.Int32
	balanceCalls atomic.Int32
}

var _ client.Endpoint = (*FakeEndpoint)(nil)

// DeterministicSignature is the default signature a FakeEndpoint derives
// from signed bytes, mimicking chains where the signature is a pure
// function of the payload.
func DeterministicSignature(signedTx []byte) string {
	sum := sha256.Sum256(signedTx)
	return "sig-" + hex.EncodeToString(sum[:8])
}

func (f *FakeEndpoint) URL() string {
	if f.Name == "" {
		return "fake://endpoint"
	}
	return f.Name
}

func (f *FakeEndpoint) SendRawTransaction(ctx context.Context, signedTx []byte) (string, error) {
	f.sendCalls.Add(1)
	if f.SendFn != nil {
		return f.SendFn(ctx, signedTx)
	}
	return DeterministicSignature(signedTx), nil
}

func (f *FakeEndpoint) SignatureStatus(ctx context.Context, signature string) (client.TxStatus, error) {
	f.statusCalls.Add(1)
	if f.StatusFn != nil {
		return f.StatusFn(ctx, signature)
	}
	return client.TxStatus{Code: client.TxStatusUnknown}, nil
}

func (f *FakeEndpoint) SignatureHistory(ctx context.Context, address string, limit int) ([]client.SignatureInfo, error) {
	f.historyCalls.Add(1)
	if f.HistoryFn != nil {
		return f.HistoryFn(ctx, address, limit)
	}
	return nil, nil
}

func (f *FakeEndpoint) BlockHeight(ctx context.Context) (uint64, error) {
	f.heightCalls.Add(1)
	if f.HeightFn != nil {
		return f.HeightFn(ctx)
	}
	return 0, nil
}

func (f *FakeEndpoint) Balance(ctx context.Context, address string) (*big.Int, error) {
	f.balanceCalls.Add(1)
	if f.BalanceFn != nil {
		return f.BalanceFn(ctx, address)
	}
	return big.NewInt(0), nil
}

func (f *FakeEndpoint) BaseFee(ctx context.Context) (uint64, error) {
	if f.BaseFeeFn != nil {
		return f.BaseFeeFn(ctx)
	}
	return 0, nil
}

// SendCalls returns how many sends this endpoint served, safely.
func (f *FakeEndpoint) SendCalls() int32 { return f.sendCalls.Load() }

// StatusCalls returns how many status queries this endpoint served, safely.
func (f *FakeEndpoint) StatusCalls() int32 { return f.statusCalls.Load() }

// HistoryCalls returns how many history queries this endpoint served, safely.
func (f *FakeEndpoint) HistoryCalls() int32 { return f.historyCalls.Load() }

// HeightCalls returns how many height queries this endpoint served, safely.
func (f *FakeEndpoint) HeightCalls() int32 { return f.heightCalls.Load() }

// Hang blocks until the context is cancelled, for endpoints that must never
// respond in a test.
func Hang(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
