package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tmdb "github.com/tendermint/tm-db"
	"go.uber.org/zap"

	gwlogger "github.com/tradeport-labs/gateway/logger"
	"github.com/tradeport-labs/gateway/store"
	"github.com/tradeport-labs/gateway/store/tendermint"
	"github.com/tradeport-labs/gateway/types"
)

// NewStore creates a new in-memory Store for testing
func NewStore(t testing.TB) store.Store {
	t.Helper()

	return tendermint.NewTMStore(tmdb.NewMemDB())
}

// NewLogger creates a development zap logger for testing
func NewLogger(t testing.TB) types.Logger {
	t.Helper()

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return gwlogger.NewZapLogger(logger.Sugar())
}

// NewConfig creates a Config tuned for fast tests
func NewConfig(t testing.TB) *types.Config {
	t.Helper()

	return &types.Config{
		Logger:             NewLogger(t),
		Network:            "testnet",
		Kind:               types.ChainKindSolana,
		RPCURLs:            []string{"fake://1", "fake://2", "fake://3"},
		MaxRetries:         0,
		RetryDelay:         0,
		RequestTimeout:     time.Second,
		BatchSize:          0,
		InterBatchDelay:    0,
		PollInterval:       10 * time.Millisecond,
		ExpiryMarginBlocks: 150,
		HistoryLookupDepth: 20,
		QuoteTTL:           time.Minute,
		InstanceCacheSize:  10,
	}
}
