// Package arrange implements the arrangement layer: the shared, sorted,
// ref-counted indexes (Arrangement) that back both a dataflow
// construction's ephemeral Stash and the long-lived TraceManager (spec
// §4.3-4.4).
package arrange

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/wbrown/flowbase/datum"
)

// Engine is a single in-memory BadgerDB instance shared by every
// Arrangement, namespaced by a key prefix per arrangement. A real
// differential-dataflow arrangement is a sorted, compacting, ref-counted
// index over (key, value) -> accumulated weight; Badger's in-memory LSM
// tree gives us exactly that data structure (sorted iteration, background
// compaction) without reaching for durability, which the system never
// promises (spec §1 Non-goals). This mirrors the teacher's own
// BadgerStore (datalog/storage/badger_store.go), down to disabling
// conflict detection since a single goroutine ever mutates an arrangement
// at a time.
type Engine struct {
	db *badger.DB
}

// NewEngine opens a fresh in-memory BadgerDB instance.
func NewEngine() (*Engine, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	opts.DetectConflicts = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("arrange: failed to open engine: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the underlying database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// rowKey concatenates a namespace prefix, an 8-byte big-endian logical
// time, and the encoded full tuple (key columns followed by value
// columns, as one combined encoding so it can be decoded back with a
// single DecodeTuple call). The time comes before the tuple encoding so
// decoding it back out never has to guess where the tuple bytes end.
// Every physical Badger key is unique per (logical row, time), so an
// update retracted at a later time lives in its own row instead of
// canceling an earlier time's weight in place (spec §3 "Arrangement...
// ((key, value), time, diff) triples").
func rowKey(prefix []byte, key, val datum.Tuple, timeNanos int64) []byte {
	full := datum.Concat(key, val)
	k := make([]byte, 0, len(prefix)+8+16*len(full))
	k = append(k, prefix...)
	k = append(k, encodeTime(timeNanos)...)
	k = append(k, datum.EncodeTuple(full)...)
	return k
}

func encodeTime(timeNanos int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(timeNanos))
	return buf
}

func decodeTime(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf))
}

func encodeDiff(diff int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(diff))
	return buf
}

func decodeDiff(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf))
}

// MergeDiff accumulates diff into the weight already stored for
// (key, val) at exactly timeNanos under prefix, deleting that row
// entirely if the accumulated weight reaches zero (spec §4.4,
// "Consolidate ... coalesce same-key tuples, removing any whose
// accumulated diff is zero"). Two updates submitted at the same logical
// time are unordered and summed (spec §7); an update at a different
// time never touches another time's stored weight, since a read "as of"
// some time must be able to tell which updates had and hadn't happened
// yet (spec §8 Scenario D).
func (e *Engine) MergeDiff(prefix []byte, key, val datum.Tuple, timeNanos int64, diff int64) error {
	k := rowKey(prefix, key, val, timeNanos)
	return e.db.Update(func(txn *badger.Txn) error {
		existing := int64(0)
		item, err := txn.Get(k)
		switch err {
		case nil:
			err = item.Value(func(raw []byte) error {
				existing = decodeDiff(raw)
				return nil
			})
			if err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
			// no existing weight
		default:
			return err
		}

		total := existing + diff
		if total == 0 {
			err := txn.Delete(k)
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return txn.Set(k, encodeDiff(total))
	})
}

// Row is one decoded (key, value, accumulated diff) entry from a Scan.
type Row struct {
	Key  datum.Tuple
	Val  datum.Tuple
	Diff int64
}

// Scan iterates every row stored under prefix whose recorded time is at
// most asOf, decoding each key suffix as a (time, key tuple of keyArity
// columns, value tuple) triple, and returns one Row per distinct
// (key, value) summing every such row's diff — the accumulated net
// weight of that tuple as of asOf (spec §3's Arrangement definition,
// "((key, value), time, diff) triples"). Rows whose accumulated diff
// nets to zero are omitted, matching the single-time MergeDiff's own
// delete-at-zero behavior.
func (e *Engine) Scan(prefix []byte, keyArity int, asOf int64) ([]Row, error) {
	type rowKeyParts struct {
		key, val datum.Tuple
	}
	order := make([]string, 0)
	totals := make(map[string]*rowKeyParts)
	diffs := make(map[string]int64)

	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			suffix := item.Key()[len(prefix):]
			if len(suffix) < 8 {
				return fmt.Errorf("arrange: corrupt key: missing time prefix")
			}
			t := decodeTime(suffix[:8])
			if t > asOf {
				continue
			}
			full, err := datum.DecodeTuple(suffix[8:])
			if err != nil {
				return fmt.Errorf("arrange: corrupt key: %w", err)
			}
			if len(full) < keyArity {
				return fmt.Errorf("arrange: scanned row arity %d, expected at least %d key columns", len(full), keyArity)
			}

			var diff int64
			err = item.Value(func(raw []byte) error {
				diff = decodeDiff(raw)
				return nil
			})
			if err != nil {
				return fmt.Errorf("arrange: corrupt value: %w", err)
			}

			groupKey := string(suffix[8:])
			if _, ok := totals[groupKey]; !ok {
				totals[groupKey] = &rowKeyParts{key: full[:keyArity], val: full[keyArity:]}
				order = append(order, groupKey)
			}
			diffs[groupKey] += diff
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(order))
	for _, groupKey := range order {
		diff := diffs[groupKey]
		if diff == 0 {
			continue
		}
		parts := totals[groupKey]
		rows = append(rows, Row{Key: parts.key, Val: parts.val, Diff: diff})
	}
	return rows, nil
}

// DeleteNamespace removes every row stored under prefix, used when an
// Arrangement's reference count drops to zero.
func (e *Engine) DeleteNamespace(prefix []byte) error {
	var keys [][]byte
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, bytes.Clone(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return e.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}
