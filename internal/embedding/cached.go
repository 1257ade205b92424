package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mnemograph/mnemo/internal/domain"
)

const defaultEmbedTTL = time.Hour

// CachedClient memoizes embeddings in a key-value cache. The cache is
// advisory: any miss or decode failure falls through to the inner client.
type CachedClient struct {
	inner domain.EmbeddingClient
	cache domain.KeyValueCache
	ttl   time.Duration
}

func NewCachedClient(inner domain.EmbeddingClient, cache domain.KeyValueCache) *CachedClient {
	return &CachedClient{inner: inner, cache: cache, ttl: defaultEmbedTTL}
}

func (c *CachedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embedKey(text)

	if data, ok := c.cache.Get(key); ok {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		c.cache.Set(key, data, c.ttl)
	}
	return vec, nil
}

func embedKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + hex.EncodeToString(sum[:])
}
