package types

import (
	"time"
)

// ChainKind selects the endpoint adapter used for a network.
type ChainKind string

const (
	ChainKindSolana ChainKind = "solana"
	ChainKindEVM    ChainKind = "evm"
)

// Config holds the per-network settings consumed by the submission core.
// One Config describes one network; connector instances for different
// networks never share state.
type Config struct {
	Logger  Logger
	Network string
	Kind    ChainKind

	// RPC endpoint URLs, in pool order. Must be non-empty.
	RPCURLs []string

	// Defaults applied to RPC calls wrapped by the retry executor.
	MaxRetries     uint
	RetryDelay     time.Duration
	RequestTimeout time.Duration

	// Defaults for batched fan-out reads (balances, order cancels).
	BatchSize       uint
	InterBatchDelay time.Duration

	// Confirmation polling.
	PollInterval       time.Duration
	ExpiryMarginBlocks uint64
	HistoryLookupDepth int

	// Quote two-step flow.
	QuoteTTL time.Duration

	// Connector registry capacity.
	InstanceCacheSize int
}

const (
	DefaultPollInterval       = 500 * time.Millisecond
	DefaultExpiryMarginBlocks = 150
	DefaultHistoryLookupDepth = 20
	DefaultQuoteTTL           = 5 * time.Minute
	DefaultInstanceCacheSize  = 10
	DefaultRequestTimeout     = 15 * time.Second
)

// ApplyDefaults fills the zero-valued tunables that have reference defaults.
// RPCURLs and Kind are deliberately left alone; a pool with no endpoints
// fails construction, not use.
func (c *Config) ApplyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ExpiryMarginBlocks == 0 {
		c.ExpiryMarginBlocks = DefaultExpiryMarginBlocks
	}
	if c.HistoryLookupDepth == 0 {
		c.HistoryLookupDepth = DefaultHistoryLookupDepth
	}
	if c.QuoteTTL == 0 {
		c.QuoteTTL = DefaultQuoteTTL
	}
	if c.InstanceCacheSize == 0 {
		c.InstanceCacheSize = DefaultInstanceCacheSize
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}
