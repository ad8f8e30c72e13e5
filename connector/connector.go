// Package connector exposes one Connector per network and the Registry that
// owns their lifecycles.
package connector

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/tradeport-labs/gateway/cache"
	"github.com/tradeport-labs/gateway/store/models"
	"github.com/tradeport-labs/gateway/txmanager"
	"github.com/tradeport-labs/gateway/types"
)

// ErrUnknownNetwork is returned for networks absent from the configuration.
var ErrUnknownNetwork = errors.New("unknown network")

// ErrQuoteNotFound is returned when a quote id is absent: expired, already
// executed, or never issued.
var ErrQuoteNotFound = errors.New("quote not found or expired")

// Connector is the per-network entry point route handlers talk to.
type Connector interface {
	Network() string

	// SubmitAndConfirm broadcasts a signed transaction and tracks it to a
	// terminal state. See txmanager.TxManager.
	SubmitAndConfirm(ctx context.Context, signedTx []byte, payer string, lastValidHeight uint64) (*models.TxRecord, error)

	// Balances reads native balances for many addresses with the network's
	// batch policy.
	Balances(ctx context.Context, addresses []string) ([]*big.Int, error)

	// EffectiveFee is the network's base fee estimate scaled by the shared
	// fee multiplier.
	EffectiveFee(ctx context.Context) (uint64, error)

	// CacheQuote stores a computed quote and returns its id.
	CacheQuote(quote models.Quote) string
	// FetchQuote returns a live quote by id.
	FetchQuote(id string) (models.Quote, bool)
	// ExecuteQuote submits the signed transaction built from a cached quote.
	// The quote is evicted only on success; a transiently failed execution
	// leaves it retryable until the TTL.
	ExecuteQuote(ctx context.Context, id string, signedTx []byte, payer string, lastValidHeight uint64) (*models.TxRecord, error)

	GetRecord(signature string) (*models.TxRecord, error)

	// Close stops the connector's background services.
	Close()
}

// Factory constructs the Connector for one network. The fee controller is
// process-wide and shared across all networks' adapters.
type Factory func(cfg *types.Config, fees *txmanager.FeeController) (Connector, error)

// Registry hands out connector singletons, lazily constructed and bounded
// by an LRU.
type Registry struct {
	configs   map[string]*types.Config
	factory   Factory
	fees      *txmanager.FeeController
	instances *cache.InstanceCache[Connector]
	logger    types.Logger
}

// NewRegistry creates a registry over the given per-network configs.
// capacity bounds the number of live connectors.
func NewRegistry(configs map[string]*types.Config, factory Factory, fees *txmanager.FeeController, capacity int, logger types.Logger) (*Registry, error) {
	if capacity == 0 {
		capacity = types.DefaultInstanceCacheSize
	}
	instances, err := cache.NewInstanceCache[Connector](capacity)
	if err != nil {
		return nil, err
	}
	return &Registry{
		configs:   configs,
		factory:   factory,
		fees:      fees,
		instances: instances,
		logger:    logger,
	}, nil
}

// GetConnector returns the connector for network, constructing it on first
// access. Concurrent first accesses construct exactly one instance.
func (r *Registry) GetConnector(network string) (Connector, error) {
	cfg, ok := r.configs[network]
	if !ok {
		return nil, errors.Wrap(ErrUnknownNetwork, network)
	}
	return r.instances.GetOrCreate(network, func() (Connector, error) {
		r.logger.Infow("Registry: constructing connector",
			"network", network,
		)
		return r.factory(cfg, r.fees)
	})
}
