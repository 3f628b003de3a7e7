// Package memory is a process-local PersistenceGateway driver for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"econote-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	pagePrefix     = "page:"
	notebookPrefix = "notebook:"
)

// Gateway keeps deep copies of every record, so callers never share state with the store.
type Gateway struct {
	cache *cache.Cache
}

func NewGateway() *Gateway {
	return &Gateway{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (g *Gateway) GetPage(_ context.Context, id uuid.UUID) (*entity.Page, error) {
	if x, found := g.cache.Get(pagePrefix + id.String()); found {
		return x.(*entity.Page).Clone(), nil
	}
	return nil, nil
}

func (g *Gateway) SavePage(_ context.Context, page *entity.Page) error {
	now := time.Now()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = &now
	g.cache.Set(pagePrefix+page.Id.String(), page.Clone(), cache.NoExpiration)
	return nil
}

func (g *Gateway) DeletePage(_ context.Context, id uuid.UUID) error {
	g.cache.Delete(pagePrefix + id.String())
	return nil
}

func (g *Gateway) GetNotebook(_ context.Context, id uuid.UUID) (*entity.Notebook, error) {
	if x, found := g.cache.Get(notebookPrefix + id.String()); found {
		return x.(*entity.Notebook).Clone(), nil
	}
	return nil, nil
}

func (g *Gateway) SaveNotebook(_ context.Context, notebook *entity.Notebook) error {
	now := time.Now()
	if notebook.CreatedAt.IsZero() {
		notebook.CreatedAt = now
	}
	notebook.UpdatedAt = &now
	g.cache.Set(notebookPrefix+notebook.Id.String(), notebook.Clone(), cache.NoExpiration)
	return nil
}

func (g *Gateway) DeleteNotebook(ctx context.Context, id uuid.UUID) error {
	nb, _ := g.GetNotebook(ctx, id)
	if nb == nil {
		return nil
	}
	for _, pageId := range nb.PageIds {
		g.cache.Delete(pagePrefix + pageId.String())
	}
	g.cache.Delete(notebookPrefix + id.String())
	return nil
}

func (g *Gateway) ListNotebooks(_ context.Context, userId uuid.UUID) ([]*entity.Notebook, error) {
	notebooks := make([]*entity.Notebook, 0)
	for key, item := range g.cache.Items() {
		if !strings.HasPrefix(key, notebookPrefix) {
			continue
		}
		nb := item.Object.(*entity.Notebook)
		if nb.UserId == userId {
			notebooks = append(notebooks, nb.Clone())
		}
	}
	sort.Slice(notebooks, func(i, j int) bool {
		return notebooks[i].CreatedAt.Before(notebooks[j].CreatedAt)
	})
	return notebooks, nil
}
