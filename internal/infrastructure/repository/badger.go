package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/neurolearn/shell/internal/domain/resource"
	"go.uber.org/zap"
)

var (
	resourcePrefix = []byte("resource/")
	sequenceKey    = []byte("sequence/resource")
)

// sequenceBandwidth is the number of ids leased from badger at once.
const sequenceBandwidth = 100

// Badger keeps resources in a badger database, ids survive restarts.
type Badger struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadger opens a database in dir, an empty dir opens an in-memory database.
func OpenBadger(dir string, logger *zap.Logger) (*Badger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	opts.Logger = badgerLogger{logger.Named("badger").Sugar()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	seq, err := db.GetSequence(sequenceKey, sequenceBandwidth)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("resource id sequence: %w", err)
	}

	return &Badger{db: db, seq: seq}, nil
}

// Close releases the id sequence and closes the database.
func (b *Badger) Close() error {
	return errors.Join(b.seq.Release(), b.db.Close())
}

// ResourceCreator provides resource.Creator.
func (b *Badger) ResourceCreator() resource.Creator {
	return b
}

// ResourceFinder provides resource.Finder.
func (b *Badger) ResourceFinder() resource.Finder {
	return b
}

// record is the stored form of a resource, it keeps the creation time
// that API responses omit.
type record struct {
	resource.Entity
	CreatedAt time.Time `json:"created_at"`
}

func encodeRecord(r resource.Entity) ([]byte, error) {
	return json.Marshal(record{Entity: r, CreatedAt: r.CreatedAt})
}

func decodeRecord(data []byte) (resource.Entity, error) {
	var rec record

	if err := json.Unmarshal(data, &rec); err != nil {
		return resource.Entity{}, err
	}

	rec.Entity.CreatedAt = rec.CreatedAt

	return rec.Entity, nil
}

func resourceKey(id int) []byte {
	k := make([]byte, len(resourcePrefix)+8)
	copy(k, resourcePrefix)
	binary.BigEndian.PutUint64(k[len(resourcePrefix):], uint64(id))

	return k
}

// Create stores a resource under the next id.
func (b *Badger) Create(ctx context.Context, value resource.Value) (resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return resource.Entity{}, err
	}

	next, err := b.seq.Next()
	if err != nil {
		return resource.Entity{}, fmt.Errorf("next resource id: %w", err)
	}

	r := resource.Entity{}
	r.Value = value
	r.ID = int(next) + 1
	r.CreatedAt = time.Now().UTC()

	data, err := encodeRecord(r)
	if err != nil {
		return resource.Entity{}, err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(resourceKey(r.ID), data)
	})
	if err != nil {
		return resource.Entity{}, fmt.Errorf("store resource %d: %w", r.ID, err)
	}

	return r, nil
}

// Find lists resources in id order.
func (b *Badger) Find(ctx context.Context) ([]resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]resource.Entity, 0)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = resourcePrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(resourcePrefix); it.ValidForPrefix(resourcePrefix); it.Next() {
			var r resource.Entity

			if err := it.Item().Value(func(v []byte) (err error) {
				r, err = decodeRecord(v)

				return err
			}); err != nil {
				return fmt.Errorf("decode %q: %w", it.Item().Key(), err)
			}

			result = append(result, r)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindByID reads a resource.
func (b *Badger) FindByID(ctx context.Context, id resource.Identity) (resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return resource.Entity{}, err
	}

	var r resource.Entity

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resourceKey(id.ID))
		if err != nil {
			return err
		}

		return item.Value(func(v []byte) (err error) {
			r, err = decodeRecord(v)

			return err
		})
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return resource.Entity{}, notFound(id)
	case err != nil:
		return resource.Entity{}, fmt.Errorf("read resource %d: %w", id.ID, err)
	}

	return r, nil
}

// badgerLogger routes badger logs to zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
