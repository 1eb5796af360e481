// Package redis stores demand analyses in a single Redis hash so that several
// service instances can share them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

// record is the JSON value stored per hash field. Priority is derived from
// the counts on load and is not persisted.
type record struct {
	AreaID       string `json:"area_id"`
	Population   int    `json:"population"`
	StationCount int    `json:"station_count"`
}

// Repository is a Redis-backed analysis repository. Each area is one field
// of the hash at key.
type Repository struct {
	client *redis.Client
	key    string
}

// NewRepository wraps an existing client.
func NewRepository(client *redis.Client, key string) *Repository {
	return &Repository{client: client, key: key}
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *Repository) Save(ctx context.Context, d *domain.DemandAnalysis) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.key, d.ID().String(), data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", d.ID(), err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id domain.AreaID) (*domain.DemandAnalysis, error) {
	data, err := r.client.HGet(ctx, r.key, id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", id, err)
	}
	return decode(data)
}

// FindAll returns every analysis ordered by area identifier.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.DemandAnalysis, error) {
	return r.collect(ctx, func(*domain.DemandAnalysis) bool { return true })
}

func (r *Repository) Delete(ctx context.Context, id domain.AreaID) (bool, error) {
	n, err := r.client.HDel(ctx, r.key, id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis hdel %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *Repository) Exists(ctx context.Context, id domain.AreaID) (bool, error) {
	ok, err := r.client.HExists(ctx, r.key, id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis hexists %s: %w", id, err)
	}
	return ok, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	n, err := r.client.HLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hlen: %w", err)
	}
	return int(n), nil
}

func (r *Repository) FindByPriorityLevel(ctx context.Context, level domain.PriorityLevel) ([]*domain.DemandAnalysis, error) {
	return r.collect(ctx, func(d *domain.DemandAnalysis) bool { return d.Priority().Level == level })
}

// CheckReadiness pings the server.
func (r *Repository) CheckReadiness(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repository) collect(ctx context.Context, keep func(*domain.DemandAnalysis) bool) ([]*domain.DemandAnalysis, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	out := make([]*domain.DemandAnalysis, 0, len(fields))
	for field, value := range fields {
		d, err := decode([]byte(value))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out, nil
}

func encode(d *domain.DemandAnalysis) ([]byte, error) {
	data, err := json.Marshal(record{
		AreaID:       d.ID().String(),
		Population:   int(d.Population()),
		StationCount: int(d.StationCount()),
	})
	if err != nil {
		return nil, fmt.Errorf("encode analysis %s: %w", d.ID(), err)
	}
	return data, nil
}

// decode rebuilds the aggregate through its constructor so stored values pass
// the same validation as new input.
func decode(data []byte) (*domain.DemandAnalysis, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	id, err := domain.ParseAreaID(rec.AreaID)
	if err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return domain.NewDemandAnalysis(id, rec.Population, rec.StationCount)
}
