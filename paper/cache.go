package paper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SuggestionCache remembers the candidate returned for a prompt.
type SuggestionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, candidate string) error
}

type DummySuggestionCache struct{}

func (dc DummySuggestionCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (dc DummySuggestionCache) Set(ctx context.Context, key, candidate string) error {
	return nil
}

type RedisSuggestionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSuggestionCache(rdb *redis.Client, ttl time.Duration) *RedisSuggestionCache {
	return &RedisSuggestionCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (rc *RedisSuggestionCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := rc.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "suggestion cache Get failed")
	}
	return val, true, nil
}

func (rc *RedisSuggestionCache) Set(ctx context.Context, key, candidate string) error {
	err := rc.rdb.Set(ctx, key, candidate, rc.ttl).Err()
	return errors.Wrap(err, "suggestion cache Set failed")
}

func SuggestionKey(model, message string) string {
	sum := sha256.Sum256([]byte(message))
	return "suggestion-" + model + "-" + hex.EncodeToString(sum[:])
}

// CachingSuggester consults a SuggestionCache before asking the wrapped
// Suggester. Cache failures are logged and otherwise ignored.
type CachingSuggester struct {
	next  Suggester
	cache SuggestionCache
	model string
	log   *logrus.Logger
}

func NewCachingSuggester(next Suggester, cache SuggestionCache, model string, log *logrus.Logger) *CachingSuggester {
	return &CachingSuggester{
		next:  next,
		cache: cache,
		model: model,
		log:   log,
	}
}

func (cs *CachingSuggester) Suggest(ctx context.Context, message string) (string, error) {
	key := SuggestionKey(cs.model, message)
	candidate, found, err := cs.cache.Get(ctx, key)
	if err != nil {
		cs.log.WithError(err).Warn("Cannot read suggestion cache.")
	}
	if found {
		cs.log.WithFields(logrus.Fields{
			"key":       key,
			"candidate": candidate,
		}).Info("Suggestion found in cache.")
		return candidate, nil
	}

	candidate, err = cs.next.Suggest(ctx, message)
	if err != nil {
		return "", err
	}
	if err := cs.cache.Set(ctx, key, candidate); err != nil {
		cs.log.WithError(err).Warn("Cannot store suggestion.")
	}
	return candidate, nil
}
