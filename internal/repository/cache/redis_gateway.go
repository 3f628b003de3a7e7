// Package cache decorates a PersistenceGateway with a redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"econote-be/internal/entity"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "econote:"

// RedisGateway serves GetPage and GetNotebook from redis when it can and invalidates on every write.
// Redis failures are logged and the call falls through to the inner gateway.
type RedisGateway struct {
	inner  contract.PersistenceGateway
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisGateway(inner contract.PersistenceGateway, rdb *redis.Client, ttl time.Duration, logger logger.ILogger) *RedisGateway {
	return &RedisGateway{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func pageKey(id uuid.UUID) string     { return fmt.Sprintf("%spage:%s", keyPrefix, id) }
func notebookKey(id uuid.UUID) string { return fmt.Sprintf("%snotebook:%s", keyPrefix, id) }

func (g *RedisGateway) read(ctx context.Context, key string, dst interface{}) bool {
	data, err := g.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.logger.Warn("PageCache", "Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		g.logger.Warn("PageCache", "Dropping undecodable cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		g.invalidate(ctx, key)
		return false
	}
	return true
}

func (g *RedisGateway) write(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := g.rdb.Set(ctx, key, data, g.ttl).Err(); err != nil {
		g.logger.Warn("PageCache", "Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (g *RedisGateway) invalidate(ctx context.Context, keys ...string) {
	if err := g.rdb.Del(ctx, keys...).Err(); err != nil {
		g.logger.Warn("PageCache", "Cache invalidation failed", map[string]interface{}{"keys": keys, "error": err.Error()})
	}
}

func (g *RedisGateway) GetPage(ctx context.Context, id uuid.UUID) (*entity.Page, error) {
	var cached entity.Page
	if g.read(ctx, pageKey(id), &cached) {
		return &cached, nil
	}
	page, err := g.inner.GetPage(ctx, id)
	if err != nil || page == nil {
		return page, err
	}
	g.write(ctx, pageKey(id), page)
	return page, nil
}

func (g *RedisGateway) SavePage(ctx context.Context, page *entity.Page) error {
	if err := g.inner.SavePage(ctx, page); err != nil {
		return err
	}
	g.invalidate(ctx, pageKey(page.Id))
	return nil
}

func (g *RedisGateway) DeletePage(ctx context.Context, id uuid.UUID) error {
	if err := g.inner.DeletePage(ctx, id); err != nil {
		return err
	}
	g.invalidate(ctx, pageKey(id))
	return nil
}

func (g *RedisGateway) GetNotebook(ctx context.Context, id uuid.UUID) (*entity.Notebook, error) {
	var cached entity.Notebook
	if g.read(ctx, notebookKey(id), &cached) {
		return &cached, nil
	}
	nb, err := g.inner.GetNotebook(ctx, id)
	if err != nil || nb == nil {
		return nb, err
	}
	g.write(ctx, notebookKey(id), nb)
	return nb, nil
}

func (g *RedisGateway) SaveNotebook(ctx context.Context, notebook *entity.Notebook) error {
	if err := g.inner.SaveNotebook(ctx, notebook); err != nil {
		return err
	}
	g.invalidate(ctx, notebookKey(notebook.Id))
	return nil
}

func (g *RedisGateway) DeleteNotebook(ctx context.Context, id uuid.UUID) error {
	nb, err := g.inner.GetNotebook(ctx, id)
	if err != nil {
		return err
	}
	if err := g.inner.DeleteNotebook(ctx, id); err != nil {
		return err
	}
	keys := []string{notebookKey(id)}
	if nb != nil {
		for _, pageId := range nb.PageIds {
			keys = append(keys, pageKey(pageId))
		}
	}
	g.invalidate(ctx, keys...)
	return nil
}

func (g *RedisGateway) ListNotebooks(ctx context.Context, userId uuid.UUID) ([]*entity.Notebook, error) {
	return g.inner.ListNotebooks(ctx, userId)
}
