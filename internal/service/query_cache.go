package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/metrics"
)

const (
	recallCachePrefix = "recall_cache:"
	defaultCacheTTL   = 5 * time.Minute
)

// QueryCache memoizes full recall responses keyed by the semantic
// identity of the request. The cache is advisory: lookup and store
// failures degrade to a miss and never fail the recall.
type QueryCache struct {
	cache   domain.KeyValueCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Sink
}

func NewQueryCache(cache domain.KeyValueCache, ttl time.Duration, logger *zap.Logger, sink *metrics.Sink) *QueryCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &QueryCache{
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: sink,
	}
}

// cacheKeyParams is the canonical shape hashed into a cache key. Two
// requests differing only in result-shaping inputs listed here must
// never share an entry.
type cacheKeyParams struct {
	Query          string         `json:"query"`
	AgentID        string         `json:"agent_id"`
	Limit          int            `json:"limit"`
	MetadataFilter map[string]any `json:"metadata_filter,omitempty"`
}

// Key derives a deterministic cache key for a recall request. Map keys
// marshal in sorted order, so equal filters produce equal keys no
// matter how the caller built the map.
func (qc *QueryCache) Key(query, agentID string, limit int, filter map[string]any) string {
	raw, err := json.Marshal(cacheKeyParams{
		Query:          query,
		AgentID:        agentID,
		Limit:          limit,
		MetadataFilter: filter,
	})
	if err != nil {
		// Only unmarshalable filter values can land here; fall back to
		// a key that ignores the filter rather than failing the recall.
		raw = []byte(query + "|" + agentID)
	}
	sum := sha256.Sum256(raw)
	return recallCachePrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached results for a key, or nil on a miss. Entries
// that no longer deserialize count as misses.
func (qc *QueryCache) Get(key string) []domain.MemoryResult {
	if qc.cache == nil {
		return nil
	}
	raw, ok := qc.cache.Get(key)
	if !ok {
		qc.metrics.CacheMiss()
		return nil
	}
	var results []domain.MemoryResult
	if err := json.Unmarshal(raw, &results); err != nil {
		qc.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		qc.metrics.CacheMiss()
		return nil
	}
	qc.metrics.CacheHit()
	return results
}

// Set stores results under key. Serialization failures are logged and
// dropped.
func (qc *QueryCache) Set(key string, results []domain.MemoryResult) {
	if qc.cache == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		qc.logger.Warn("skipping cache store", zap.String("key", key), zap.Error(err))
		return
	}
	qc.cache.Set(key, raw, qc.ttl)
}
