//go:build integration

package redis_test

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/couchcryptid/ev-demand-service/internal/adapter/redis"
	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRepository_Redis(t *testing.T) {
	ctx := context.Background()
	repo := redis.NewRepository(startRedis(t), "ev_demand:test")
	require.NoError(t, repo.CheckReadiness(ctx))

	save := func(code string, population, stations int) {
		d, err := domain.NewDemandAnalysis(domain.MustParseAreaID(code), population, stations)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, d))
	}
	save("13189", 30000, 5)  // HIGH
	save("10115", 10000, 10) // LOW
	save("12049", 500, 0)    // HIGH
	save("10115", 9000, 10)  // upsert

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	found, err := repo.FindByID(ctx, domain.MustParseAreaID("10115"))
	require.NoError(t, err)
	assert.Equal(t, domain.PopulationCount(9000), found.Population())

	_, err = repo.FindByID(ctx, domain.MustParseAreaID("14199"))
	require.ErrorIs(t, err, domain.ErrNotFound)

	high, err := repo.FindByPriorityLevel(ctx, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, []string{"12049", "13189"}, []string{high[0].ID().String(), high[1].ID().String()})

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	removed, err := repo.Delete(ctx, domain.MustParseAreaID("12049"))
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, domain.MustParseAreaID("12049"))
	require.NoError(t, err)
	assert.False(t, removed)

	ok, err := repo.Exists(ctx, domain.MustParseAreaID("12049"))
	require.NoError(t, err)
	assert.False(t, ok)
}
