package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Eprince-hub/live-chat/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// HistoryCache caches assembled history pages. Only cursor pages are
// cached; the newest page changes on every message and is always served
// from the store.
type HistoryCache interface {
	BuildKey(streamID, beforeID string, limit int) string
	Get(ctx context.Context, key string) (*domain.ChatHistoryPage, error)
	Set(ctx context.Context, key string, page *domain.ChatHistoryPage, ttl time.Duration) error
	Close() error
}
