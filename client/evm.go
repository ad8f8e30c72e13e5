package client

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethRPC "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/tradeport-labs/gateway/executor"
	"github.com/tradeport-labs/gateway/types"
)

// dialAttempts bounds the initial connection retries per endpoint.
const dialAttempts = 3

// EVMEndpoint adapts one Ethereum-compatible JSON-RPC node to the Endpoint
// interface.
type EVMEndpoint struct {
	url    string
	rpc    *gethRPC.Client
	eth    *ethclient.Client
	logger types.Logger
}

var _ Endpoint = (*EVMEndpoint)(nil)

// DialEVMEndpoint connects to the given RPC URL, backing off between
// attempts. Unlike the Solana client, geth's RPC client dials eagerly.
func DialEVMEndpoint(ctx context.Context, rawURL string, logger types.Logger) (*EVMEndpoint, error) {
	sleeper := executor.NewBackoffSleeper()
	var rpcClient *gethRPC.Client
	var err error
	for i := 0; i < dialAttempts; i++ {
		sleeper.Sleep()
		rpcClient, err = gethRPC.DialContext(ctx, rawURL)
		if err == nil {
			break
		}
		logger.Warnw("EVMEndpoint: dial failed, retrying",
			"url", rawURL,
			"err", err,
		)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s failed", rawURL)
	}
	return &EVMEndpoint{
		url:    rawURL,
		rpc:    rpcClient,
		eth:    ethclient.NewClient(rpcClient),
		logger: logger,
	}, nil
}

func (e *EVMEndpoint) URL() string {
	return e.url
}

func (e *EVMEndpoint) SendRawTransaction(ctx context.Context, signedTx []byte) (string, error) {
	var hash gethCommon.Hash
	err := e.rpc.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(signedTx))
	if err != nil {
		return "", errors.Wrapf(err, "eth_sendRawTransaction failed at %s", e.url)
	}
	return hash.Hex(), nil
}

func (e *EVMEndpoint) SignatureStatus(ctx context.Context, signature string) (TxStatus, error) {
	receipt, err := e.eth.TransactionReceipt(ctx, gethCommon.HexToHash(signature))
	if errors.Is(err, ethereum.NotFound) {
		return TxStatus{Code: TxStatusUnknown}, nil
	}
	if err != nil {
		return TxStatus{}, errors.Wrapf(err, "receipt lookup failed at %s", e.url)
	}
	if receipt.Status == gethTypes.ReceiptStatusFailed {
		return TxStatus{Code: TxStatusFailed, Reason: "execution reverted"}, nil
	}
	return TxStatus{Code: TxStatusConfirmed}, nil
}

// SignatureHistory is unsupported: standard Ethereum RPC has no per-address
// transaction index.
func (e *EVMEndpoint) SignatureHistory(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	return nil, ErrHistoryNotSupported
}

func (e *EVMEndpoint) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := e.eth.BlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "eth_blockNumber failed at %s", e.url)
	}
	return height, nil
}

func (e *EVMEndpoint) Balance(ctx context.Context, address string) (*big.Int, error) {
	balance, err := e.eth.BalanceAt(ctx, gethCommon.HexToAddress(address), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "eth_getBalance failed at %s", e.url)
	}
	return balance, nil
}

// BaseFee reports the node's suggested priority tip, in wei.
func (e *EVMEndpoint) BaseFee(ctx context.Context) (uint64, error) {
	tip, err := e.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "eth_maxPriorityFeePerGas failed at %s", e.url)
	}
	return tip.Uint64(), nil
}
