// published.go provides a Valkey-backed cache for published storefront
// reads. The publish workflow invalidates the affected key, so storefront
// clients refetching after a template-published event always observe the
// new snapshot. Draft (preview) reads never touch this cache.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"storepress/internal/models"
)

const (
	// publishedKeyPrefix namespaces published-read keys in Valkey.
	publishedKeyPrefix = "published:"

	// DefaultPublishedTTL is how long a published payload stays cached
	// when no publish invalidates it earlier.
	DefaultPublishedTTL = 5 * time.Minute
)

// PublishedCache caches serialized published-read responses in Valkey.
type PublishedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPublishedCache creates a published-read cache backed by the given
// Valkey client.
func NewPublishedCache(client *redis.Client, ttl time.Duration) *PublishedCache {
	if ttl == 0 {
		ttl = DefaultPublishedTTL
	}
	return &PublishedCache{client: client, ttl: ttl}
}

// Get retrieves a cached payload. Returns false on miss; cache errors are
// logged and treated as misses.
func (pc *PublishedCache) Get(ctx context.Context, themeID uuid.UUID, pageType models.PageType, slug string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, publishedKey(themeID, pageType, slug)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("published cache get error", "page_type", pageType, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a serialized payload with the configured TTL.
func (pc *PublishedCache) Set(ctx context.Context, themeID uuid.UUID, pageType models.PageType, slug string, payload []byte) {
	if err := pc.client.Set(ctx, publishedKey(themeID, pageType, slug), payload, pc.ttl).Err(); err != nil {
		slog.Warn("published cache set error", "page_type", pageType, "error", err)
	}
}

// Invalidate removes the cached payload for one template key. Called by
// the publish workflow; best-effort.
func (pc *PublishedCache) Invalidate(themeID uuid.UUID, pageType models.PageType, slug string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := pc.client.Del(ctx, publishedKey(themeID, pageType, slug)).Err(); err != nil {
		slog.Warn("published cache invalidate error", "page_type", pageType, "error", err)
	}
}

// publishedKey builds the Valkey key for one template identity.
func publishedKey(themeID uuid.UUID, pageType models.PageType, slug string) string {
	return fmt.Sprintf("%s%s:%s:%s", publishedKeyPrefix, themeID, pageType, slug)
}
