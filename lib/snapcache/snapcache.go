// Package snapcache persists the raw subtree snapshots a run captured,
// keyed by run id and candidate position. A cached run can be replayed
// through the extraction pipeline later without touching the target
// application again.
package snapcache

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("uiharvest.lib.snapcache")

var ErrNotFound = badger.ErrKeyNotFound

type Entry struct {
	Position int
	Display  string
	Html     string

	ExpiresAt int64
}

type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, err
	}
	return New(db, ttl), nil
}

func New(db *badger.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl}
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// key zero-pads the position so badger's lexicographic iteration order
// is also capture order.
func key(runId string, position int) []byte {
	return []byte(fmt.Sprintf("%s:%08d", runId, position))
}

func (c *Cache) Put(ctx context.Context, runId string, entry Entry) error {
	ctx, span := tracer.Start(ctx, "Put")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runId),
		attribute.Int("position", entry.Position),
	)

	entry.ExpiresAt = time.Now().Add(c.ttl).Unix()

	serialized := bytes.NewBuffer(nil)
	err := gob.NewEncoder(serialized).Encode(entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize snapshot")
		return err
	}

	tx := c.db.NewTransaction(true)
	defer tx.Commit()

	err = tx.Set(key(runId, entry.Position), serialized.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, runId string, position int) (Entry, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runId),
		attribute.Int("position", position),
	)

	tx := c.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get(key(runId, position))
	if err == badger.ErrKeyNotFound {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return Entry{}, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return Entry{}, err
	}

	var entry Entry
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return Entry{}, err
	}

	if time.Now().Unix() >= entry.ExpiresAt {
		tx := c.db.NewTransaction(true)
		defer tx.Commit()
		err = tx.Delete(key(runId, position))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}
		return Entry{}, ErrNotFound
	}

	return entry, nil
}

// List returns every unexpired snapshot of a run in capture order.
func (c *Cache) List(ctx context.Context, runId string) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runId))

	now := time.Now().Unix()
	prefix := []byte(runId + ":")

	var entries []Entry
	err := c.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			serialized, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var entry Entry
			err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&entry)
			if err != nil {
				return err
			}
			if now >= entry.ExpiresAt {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to iterate run snapshots")
		return nil, err
	}

	span.SetAttributes(attribute.Int("snapshots", len(entries)))
	return entries, nil
}
