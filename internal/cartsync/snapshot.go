package cartsync

import (
	"context"
	"encoding/json"

	"mincommerce/internal/domain"
	"mincommerce/internal/pkg/cache"
)

// Snapshot persiste o estado local do carrinho entre sessões do cliente
// (o análogo do storage persistido do navegador). É sempre best-effort.
type Snapshot interface {
	Save(ctx context.Context, subjectID string, items []domain.CartItem) error
	Load(ctx context.Context, subjectID string) ([]domain.CartItem, error)
}

// Chave do snapshot no cache, por subject.
const snapshotKeyPrefix = "min-commerce.cart:"

// CacheSnapshot implementa Snapshot sobre o cache (Redis).
type CacheSnapshot struct {
	cache cache.Client
}

// NewCacheSnapshot cria o snapshot baseado em cache.
func NewCacheSnapshot(client cache.Client) *CacheSnapshot {
	return &CacheSnapshot{cache: client}
}

// Save serializa os itens e grava sem expiração (o carrinho local sobrevive à sessão).
func (c *CacheSnapshot) Save(ctx context.Context, subjectID string, items []domain.CartItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, snapshotKeyPrefix+subjectID, payload, 0)
}

// Load recupera o último estado gravado; cache miss devolve carrinho vazio.
func (c *CacheSnapshot) Load(ctx context.Context, subjectID string) ([]domain.CartItem, error) {
	raw, err := c.cache.Get(ctx, snapshotKeyPrefix+subjectID)
	if err == cache.ErrCacheMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return normalizeItems(items), nil
}
