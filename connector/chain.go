package connector

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	tmdb "github.com/tendermint/tm-db"

	"github.com/tradeport-labs/gateway/cache"
	"github.com/tradeport-labs/gateway/client"
	"github.com/tradeport-labs/gateway/store/models"
	"github.com/tradeport-labs/gateway/store/tendermint"
	"github.com/tradeport-labs/gateway/tracker"
	"github.com/tradeport-labs/gateway/txmanager"
	"github.com/tradeport-labs/gateway/types"
)

// chainConnector is the default Connector: an endpoint pool, a height
// tracker, a transaction manager over an in-memory record store, and a
// quote cache.
type chainConnector struct {
	network string
	config  *types.Config
	manager txmanager.TxManager
	heights *tracker.HeightTracker
	quotes  *cache.QuoteCache[models.Quote]
	logger  types.Logger
}

var _ Connector = (*chainConnector)(nil)

// NewChainConnector is the default Factory.
func NewChainConnector(cfg *types.Config, fees *txmanager.FeeController) (Connector, error) {
	endpoints, err := buildEndpoints(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := client.NewPool(endpoints)
	if err != nil {
		return nil, err
	}

	heights := tracker.NewHeightTracker(pool, cfg)
	if err := heights.Start(); err != nil {
		return nil, err
	}

	quotes, err := cache.NewQuoteCache[models.Quote](cfg.QuoteTTL)
	if err != nil {
		_ = heights.Stop()
		return nil, err
	}

	store := tendermint.NewTMStore(tmdb.NewMemDB())
	manager := txmanager.NewTxManager(pool, store, fees, heights, cfg)

	return &chainConnector{
		network: cfg.Network,
		config:  cfg,
		manager: manager,
		heights: heights,
		quotes:  quotes,
		logger:  cfg.Logger,
	}, nil
}

func buildEndpoints(cfg *types.Config) ([]client.Endpoint, error) {
	endpoints := make([]client.Endpoint, 0, len(cfg.RPCURLs))
	for _, rawURL := range cfg.RPCURLs {
		switch cfg.Kind {
		case types.ChainKindSolana:
			endpoints = append(endpoints, client.NewSolanaEndpoint(rawURL, cfg.Logger))
		case types.ChainKindEVM:
			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
			endpoint, err := client.DialEVMEndpoint(ctx, rawURL, cfg.Logger)
			cancel()
			if err != nil {
				return nil, err
			}
			endpoints = append(endpoints, endpoint)
		default:
			return nil, errors.Errorf("network %s has unknown kind %q", cfg.Network, cfg.Kind)
		}
	}
	return endpoints, nil
}

func (cc *chainConnector) Network() string {
	return cc.network
}

func (cc *chainConnector) SubmitAndConfirm(ctx context.Context, signedTx []byte, payer string, lastValidHeight uint64) (*models.TxRecord, error) {
	return cc.manager.SubmitAndConfirm(ctx, signedTx, payer, lastValidHeight)
}

func (cc *chainConnector) Balances(ctx context.Context, addresses []string) ([]*big.Int, error) {
	return cc.manager.Balances(ctx, addresses)
}

func (cc *chainConnector) EffectiveFee(ctx context.Context) (uint64, error) {
	return cc.manager.EffectiveFee(ctx)
}

func (cc *chainConnector) CacheQuote(quote models.Quote) string {
	return cc.quotes.Put(quote)
}

func (cc *chainConnector) FetchQuote(id string) (models.Quote, bool) {
	return cc.quotes.Get(id)
}

func (cc *chainConnector) ExecuteQuote(ctx context.Context, id string, signedTx []byte, payer string, lastValidHeight uint64) (*models.TxRecord, error) {
	if _, ok := cc.quotes.Get(id); !ok {
		return nil, errors.Wrap(ErrQuoteNotFound, id)
	}
	record, err := cc.manager.SubmitAndConfirm(ctx, signedTx, payer, lastValidHeight)
	if err != nil {
		// The quote stays cached: the caller may retry the execution with a
		// rebuilt transaction until the TTL evicts it.
		return record, err
	}
	cc.quotes.Delete(id)
	return record, nil
}

func (cc *chainConnector) GetRecord(signature string) (*models.TxRecord, error) {
	return cc.manager.GetRecord(signature)
}

func (cc *chainConnector) Close() {
	if err := cc.heights.Stop(); err != nil {
		cc.logger.Debugw("Connector: height tracker stop",
			"network", cc.network,
			"err", err,
		)
	}
	cc.quotes.Close()
}
