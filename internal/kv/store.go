// Package kv provides the flat key space behind the flat entity store: a
// handful of fixed keys, each holding one serialized collection that is
// always read and written whole.
package kv

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Get when no value has been stored under a key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a flat key → bytes space. Put replaces the whole value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateKey rejects keys that cannot double as file or object names.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("kv: invalid key %q", key)
	}
	return nil
}
