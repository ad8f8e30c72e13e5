package client_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeport-labs/gateway/client"
	gwTesting "github.com/tradeport-labs/gateway/internal/testing"
)

func newFakePool(t *testing.T, n int) (*client.Pool, []client.Endpoint) {
	t.Helper()

	endpoints := make([]client.Endpoint, n)
	for i := range endpoints {
		endpoints[i] = &gwTesting.FakeEndpoint{Name: string(rune('a' + i))}
	}
	pool, err := client.NewPool(endpoints)
	require.NoError(t, err)
	return pool, endpoints
}

func TestNewPool_RequiresEndpoints(t *testing.T) {
	_, err := client.NewPool(nil)
	require.Error(t, err)
}

func TestPool_NextIsRoundRobin(t *testing.T) {
	pool, endpoints := newFakePool(t, 3)

	// One full rotation returns each endpoint exactly once, in order.
	for i := 0; i < 3; i++ {
		assert.Same(t, endpoints[i], pool.Next())
	}
	// The next call wraps to the first again.
	assert.Same(t, endpoints[0], pool.Next())
}

func TestPool_AllReturnsConstructionOrder(t *testing.T) {
	pool, endpoints := newFakePool(t, 4)

	all := pool.All()
	require.Len(t, all, 4)
	for i := range endpoints {
		assert.Same(t, endpoints[i], all[i])
	}

	// Mutating the returned slice must not affect the pool.
	all[0] = all[1]
	assert.Same(t, endpoints[0], pool.All()[0])
}

func TestPool_NextIsSafeForConcurrentUse(t *testing.T) {
	pool, _ := newFakePool(t, 3)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				assert.NotNil(t, pool.Next())
			}
		}()
	}
	wg.Wait()
}
