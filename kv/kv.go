/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package kv provides the key-value slots score sheets are persisted into.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a flat key-value medium. A missing key is reported through the
// boolean, not as an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the backend named by kind. path is a directory for the file
// backend and a database file for sqlite; memory ignores it.
func Open(kind, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		f, err := NewFile(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case BackendSQLite:
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}

	return nil
}
