// Package archive caches rendered .pntn transcripts in Redis so repeated
// downloads of a hot document don't re-serialize it. Entries are keyed by
// document id and revision; a revision bump naturally strands the old entry,
// which the TTL then collects. The cache is strictly optional — document
// truth always lives in the in-memory store.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is the cached representation of one rendered transcript.
type Entry struct {
	DocID      string    `json:"docId"`
	Revision   int64     `json:"revision"`
	Transcript string    `json:"transcript"`
	RenderedAt time.Time `json:"renderedAt"`
}

// Cache stores entries as JSON under key: "<prefix><docID>:<revision>".
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache creates a Redis-backed export cache. Prefix may be empty.
func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = "export:"
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(docID string, revision int64) string {
	return fmt.Sprintf("%s%s:%d", c.prefix, docID, revision)
}

// Save stores a rendered transcript for the given document revision.
func (c *Cache) Save(ctx context.Context, docID string, revision int64, transcript string) error {
	e := Entry{DocID: docID, Revision: revision, Transcript: transcript, RenderedAt: time.Now().UTC()}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ttl := c.ttl
	if ttl <= 0 {
		// keep Redis from storing entries forever when misconfigured
		ttl = time.Second
	}
	return c.client.Set(ctx, c.key(docID, revision), b, ttl).Err()
}

// Load returns the cached transcript for the exact document revision, or nil
// on a miss.
func (c *Cache) Load(ctx context.Context, docID string, revision int64) (*Entry, error) {
	b, err := c.client.Get(ctx, c.key(docID, revision)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
