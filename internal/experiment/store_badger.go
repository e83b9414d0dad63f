// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const assignmentKeyPrefix = "assignment:"

// badgerAssignment is the stored value of an assignment key.
type badgerAssignment struct {
	Variant    string    `json:"variant"`
	AssignedAt time.Time `json:"assigned_at"`
}

// BadgerStore persists assignments in BadgerDB so they survive restarts.
// It does not coordinate between processes sharing a directory.
type BadgerStore struct {
	db    *badger.DB
	owned bool
	nowFn func() time.Time
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, nowFn: time.Now}
}

// OpenBadgerStore opens a BadgerDB at path. An empty path opens an in-memory
// database. Close releases the database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	return &BadgerStore{db: db, owned: true, nowFn: time.Now}, nil
}

// experimentKeyPrefix length-prefixes the experiment name so that names and
// user IDs containing ':' cannot produce the same key for different pairs.
func experimentKeyPrefix(experimentName string) []byte {
	return []byte(assignmentKeyPrefix + strconv.Itoa(len(experimentName)) + ":" + experimentName + ":")
}

func assignmentDBKey(userID, experimentName string) []byte {
	return append(experimentKeyPrefix(experimentName), userID...)
}

// Get returns the stored variant for the user and experiment.
func (s *BadgerStore) Get(ctx context.Context, userID, experimentName string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var stored badgerAssignment
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(assignmentDBKey(userID, experimentName))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get assignment: %w", err)
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if err != nil {
		return "", false, err
	}

	return stored.Variant, found, nil
}

// Put stores a variant. An existing assignment is never overwritten.
func (s *BadgerStore) Put(ctx context.Context, userID, experimentName, variant string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(badgerAssignment{Variant: variant, AssignedAt: s.nowFn().UTC()})
	if err != nil {
		return fmt.Errorf("marshal assignment: %w", err)
	}

	key := assignmentDBKey(userID, experimentName)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check assignment: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set assignment: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored assignments for an experiment.
func (s *BadgerStore) Count(ctx context.Context, experimentName string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := experimentKeyPrefix(experimentName)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}

// Close closes the database if it was opened by OpenBadgerStore.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
