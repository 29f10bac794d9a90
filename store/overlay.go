package store

import (
	"context"
	"slices"
	"strings"
)

// Write is one staged change. A nil Value deletes the key.
type Write struct {
	Key   string
	Value []byte
}

// Deleted reports whether the write removes its key.
func (w Write) Deleted() bool { return w.Value == nil }

// Overlay stages writes over a read function so a backend can apply them
// in one atomic step after the transaction body succeeds. Reads see the
// staged writes first.
type Overlay struct {
	read   func(ctx context.Context, key string) ([]byte, error)
	writes map[string][]byte
}

// NewOverlay stages writes over read, which must return ErrKeyNotFound
// for absent keys.
func NewOverlay(read func(ctx context.Context, key string) ([]byte, error)) *Overlay {
	return &Overlay{read: read, writes: make(map[string][]byte)}
}

// Get implements Bucket.
func (o *Overlay) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := o.writes[key]; ok {
		if v == nil {
			return nil, ErrKeyNotFound
		}
		return v, nil
	}
	return o.read(ctx, key)
}

// Put implements Bucket.
func (o *Overlay) Put(_ context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	o.writes[key] = slices.Clone(value)
	return nil
}

// Delete implements Bucket.
func (o *Overlay) Delete(_ context.Context, key string) error {
	o.writes[key] = nil
	return nil
}

// Len returns the number of staged writes.
func (o *Overlay) Len() int { return len(o.writes) }

// Writes returns the staged writes sorted by key.
func (o *Overlay) Writes() []Write {
	out := make([]Write, 0, len(o.writes))
	for k, v := range o.writes {
		out = append(out, Write{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b Write) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Run executes fn against an overlay over read and, when fn succeeds,
// hands the staged writes to commit. Nothing is committed if fn fails or
// stages no writes.
func Run(ctx context.Context, read func(ctx context.Context, key string) ([]byte, error), fn func(tx Tx) error, commit func(ctx context.Context, writes []Write) error) error {
	o := NewOverlay(read)
	if err := fn(NewTx(o)); err != nil {
		return err
	}
	if o.Len() == 0 {
		return nil
	}
	return commit(ctx, o.Writes())
}
