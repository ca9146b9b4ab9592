package resource

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/stepwise/internal/page"
	"github.com/nats-io/nats.go/jetstream"
)

// KVCache stores rendered content in a JetStream key-value bucket so
// several processes attached to the same server share renderings.
type KVCache struct {
	kv jetstream.KeyValue
}

// NewKVCache wraps a bucket.
func NewKVCache(kv jetstream.KeyValue) *KVCache {
	return &KVCache{kv: kv}
}

// kvKey encodes id reversibly into the JetStream key charset. Distinct IDs
// always map to distinct keys.
func kvKey(id page.ID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// Get implements Cache.
func (c *KVCache) Get(ctx context.Context, id page.ID) (*Content, bool, error) {
	entry, err := c.kv.Get(ctx, kvKey(id))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", id, err)
	}

	var content Content
	if err := json.Unmarshal(entry.Value(), &content); err != nil {
		return nil, false, fmt.Errorf("decoding cached %s: %w", id, err)
	}
	return &content, true, nil
}

// Put implements Cache. Create fails on an existing key, which keeps the
// first rendering.
func (c *KVCache) Put(ctx context.Context, id page.ID, content *Content) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", id, err)
	}
	_, err = c.kv.Create(ctx, kvKey(id), data)
	if err != nil && !errors.Is(err, jetstream.ErrKeyExists) {
		return fmt.Errorf("kv create %s: %w", id, err)
	}
	return nil
}

// Invalidate implements Cache.
func (c *KVCache) Invalidate(ctx context.Context, id page.ID) error {
	err := c.kv.Delete(ctx, kvKey(id))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete %s: %w", id, err)
	}
	return nil
}
