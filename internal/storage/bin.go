package storage

import (
	"context"
	"net/url"
)

// Bin is the persistent key/value handle of one command. Values are stored
// as JSON under bin/<uuid>/<key>.
type Bin struct {
	s    *Storage
	uuid string
}

// Bin returns the bin of the command with the given uuid. Handles are cheap
// and hold no open resources.
func (s *Storage) Bin(uuid string) *Bin {
	return &Bin{s: s, uuid: uuid}
}

// MakeBin returns the bin of a command; it satisfies the manager's bin
// provider contract.
func (s *Storage) MakeBin(ctx context.Context, uuid string) (*Bin, error) {
	return s.Bin(uuid), nil
}

func (b *Bin) path(key string) []string {
	return []string{"bin", url.PathEscape(b.uuid), url.PathEscape(key)}
}

// UUID returns the uuid of the owning command.
func (b *Bin) UUID() string {
	return b.uuid
}

// Get decodes the value stored under key into v. ErrNotFound is returned for
// missing keys.
func (b *Bin) Get(ctx context.Context, key string, v any) error {
	return b.s.Get(ctx, b.path(key), v)
}

// Set stores v under key.
func (b *Bin) Set(ctx context.Context, key string, v any) error {
	return b.s.Put(ctx, b.path(key), v)
}

// Delete removes key.
func (b *Bin) Delete(ctx context.Context, key string) error {
	return b.s.Delete(ctx, b.path(key))
}

// Keys lists the stored keys.
func (b *Bin) Keys(ctx context.Context) ([]string, error) {
	escaped, err := b.s.List(ctx, []string{"bin", url.PathEscape(b.uuid)})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(escaped))
	for _, k := range escaped {
		if key, err := url.PathUnescape(k); err == nil {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
