package coordination

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var testRedisURL string

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var redisContainer testcontainers.Container
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		os.Exit(1)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		os.Exit(1)
	}
	testRedisURL = "redis://" + endpoint

	defer func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
		}
	}()
	os.Exit(m.Run())
}

func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	opts, err := goredis.ParseURL(testRedisURL)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	require.NoError(t, client.FlushAll(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestInstanceRegistry_RegisterAndList(t *testing.T) {
	rdb := setupTestRedis(t)
	clock := clockwork.NewFakeClock()
	ctx := context.Background()

	gateway := NewInstanceRegistry(rdb, "gw-1", "gateway", clock)
	worker := NewInstanceRegistry(rdb, "wk-1", "worker", clock)

	gateway.register(ctx)
	worker.register(ctx)

	active, err := gateway.ActiveInstances(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	roles := map[string]string{}
	for _, info := range active {
		roles[info.InstanceID] = info.Role
	}
	assert.Equal(t, "gateway", roles["gw-1"])
	assert.Equal(t, "worker", roles["wk-1"])
}

func TestInstanceRegistry_StaleInstancesDropOut(t *testing.T) {
	rdb := setupTestRedis(t)
	clock := clockwork.NewFakeClock()
	ctx := context.Background()

	stale := NewInstanceRegistry(rdb, "gw-old", "gateway", clock)
	stale.register(ctx)

	clock.Advance(2 * time.Minute)

	fresh := NewInstanceRegistry(rdb, "gw-new", "gateway", clock)
	fresh.register(ctx)

	active, err := fresh.ActiveInstances(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "gw-new", active[0].InstanceID)
}

func TestInstanceRegistry_UnregisterOnStop(t *testing.T) {
	rdb := setupTestRedis(t)
	clock := clockwork.NewFakeClock()

	reg := NewInstanceRegistry(rdb, "gw-1", "gateway", clock)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reg.Start(ctx)
		close(done)
	}()
	clock.BlockUntil(1)

	active, err := reg.ActiveInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)

	cancel()
	<-done

	active, err = reg.ActiveInstances(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}
