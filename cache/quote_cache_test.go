package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeport-labs/gateway/cache"
)

func newQuoteCache(t *testing.T, ttl time.Duration) *cache.QuoteCache[string] {
	t.Helper()

	quotes, err := cache.NewQuoteCache[string](ttl)
	require.NoError(t, err)
	t.Cleanup(quotes.Close)
	return quotes
}

func TestQuoteCache_PutThenGet(t *testing.T) {
	quotes := newQuoteCache(t, time.Minute)

	id := quotes.Put("quote-payload")
	require.NotEmpty(t, id)

	payload, ok := quotes.Get(id)
	require.True(t, ok)
	assert.Equal(t, "quote-payload", payload)
}

func TestQuoteCache_IDsAreUnique(t *testing.T) {
	quotes := newQuoteCache(t, time.Minute)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := quotes.Put("payload")
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestQuoteCache_EntriesExpireAfterTTL(t *testing.T) {
	quotes := newQuoteCache(t, 100*time.Millisecond)

	id := quotes.Put("payload")
	_, ok := quotes.Get(id)
	require.True(t, ok)

	time.Sleep(150 * time.Millisecond)
	_, ok = quotes.Get(id)
	assert.False(t, ok)
}

func TestQuoteCache_GetDoesNotExtendTTL(t *testing.T) {
	quotes := newQuoteCache(t, 200*time.Millisecond)

	id := quotes.Put("payload")

	// Touch the entry repeatedly through most of its lifetime.
	for i := 0; i < 3; i++ {
		time.Sleep(50 * time.Millisecond)
		_, ok := quotes.Get(id)
		require.True(t, ok)
	}

	time.Sleep(100 * time.Millisecond)
	_, ok := quotes.Get(id)
	assert.False(t, ok)
}

func TestQuoteCache_DeleteEvictsBeforeTTL(t *testing.T) {
	quotes := newQuoteCache(t, time.Minute)

	id := quotes.Put("payload")
	quotes.Delete(id)

	_, ok := quotes.Get(id)
	assert.False(t, ok)
}
