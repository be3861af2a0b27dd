// Package replay records GRAPH.* command replies to a BadgerDB store and plays
// them back without a server.
//
// A Recorder sits between a client.Graph and a real connection and saves every
// reply (server error replies included) under a fingerprint of the command.
// A Player answers the same commands from the store. Together they turn a
// session against a live server into a fixture:
//
//	store, _ := replay.Open(replay.Options{Dir: "./testdata/motogp"})
//	defer store.Close()
//
//	// record once
//	g := client.New("motogp", replay.NewRecorder(conn, store, logger))
//
//	// replay forever
//	g = client.New("motogp", replay.NewPlayer(store, logger))
//
// Connection failures are not recorded; only replies the server actually
// sent are.
//
// ELI12:
//
// The Recorder is a tape recorder next to the phone. Every question and its
// answer go on the tape. Later the Player listens for the same question and
// plays the answer from the tape, so nobody needs to be on the other end.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/gomodule/redigo/redis"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrNotRecorded is returned by a Player for a command missing from the store.
	ErrNotRecorded = errors.New("reply not recorded")
	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("replay store closed")
	// ErrUnsupportedReply is returned for reply values redigo never produces.
	ErrUnsupportedReply = errors.New("unsupported reply value")
)

// prefixReply namespaces reply entries in the key space.
const prefixReply = byte(0x01)

// Options configures a Store.
type Options struct {
	// Dir holds the data files. Required unless InMemory is set.
	Dir string

	// InMemory keeps everything in memory. Useful for tests.
	InMemory bool

	// SyncWrites forces fsync after each write.
	SyncWrites bool
}

// Store persists command replies.
//
// Thread Safety:
//
//	Safe for concurrent use from multiple goroutines.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Entry is one recorded reply.
type Entry struct {
	Reply interface{}
	// Err is set when the server answered with an error reply.
	Err redis.Error
}

// Open opens or creates a store.
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" && !opts.InMemory {
		return nil, fmt.Errorf("replay store directory is required")
	}
	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithInMemory(opts.InMemory).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(nil).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(16 << 20).
		WithNumMemtables(2).
		WithValueThreshold(1 << 10).
		WithBlockCacheSize(4 << 20).
		WithIndexCacheSize(2 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return Open(Options{InMemory: true})
}

// Put records the reply to a command.
func (s *Store) Put(cmd string, args []interface{}, e Entry) error {
	key, err := Key(cmd, args)
	if err != nil {
		return err
	}
	data, err := encodeEntry(e)
	if err != nil {
		return fmt.Errorf("encode reply to %s: %w", cmd, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// Get returns the recorded reply to a command, or ErrNotRecorded.
func (s *Store) Get(cmd string, args []interface{}) (Entry, error) {
	key, err := Key(cmd, args)
	if err != nil {
		return Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Entry{}, ErrStoreClosed
	}

	var e Entry
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrNotRecorded, cmd)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decodeErr error
			e, decodeErr = decodeEntry(val)
			return decodeErr
		})
	})
	return e, err
}

// Len returns the number of recorded replies.
func (s *Store) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}

	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte{prefixReply}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Key returns the store key of a command: a prefix byte followed by the
// BLAKE2b-256 digest of the length-prefixed command name and arguments.
func Key(cmd string, args []interface{}) ([]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	writePart(h, []byte(cmd))
	for i, a := range args {
		b, err := argBytes(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, cmd, err)
		}
		writePart(h, b)
	}
	return h.Sum([]byte{prefixReply}), nil
}

func writePart(h io.Writer, b []byte) {
	var n [8]byte
	l := uint64(len(b))
	for i := range n {
		n[i] = byte(l >> (8 * i))
	}
	h.Write(n[:])
	h.Write(b)
}

// argBytes returns a stable byte form of a command argument.
func argBytes(a interface{}) ([]byte, error) {
	switch v := a.(type) {
	case nil:
		return []byte{}, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case int, int64, int32, uint, uint64, float64, bool:
		return []byte(fmt.Sprint(v)), nil
	}
	return nil, fmt.Errorf("%w: argument of type %T", ErrUnsupportedReply, a)
}

// ============================================================================
// Reply encoding
// ============================================================================

// wireValue is the JSON form of a redigo reply tree.
type wireValue struct {
	T string      `json:"t"`
	S string      `json:"s,omitempty"`
	B []byte      `json:"b,omitempty"`
	I int64       `json:"i,omitempty"`
	A []wireValue `json:"a,omitempty"`
}

type serializableEntry struct {
	Reply wireValue `json:"reply"`
	Err   string    `json:"err,omitempty"`
	IsErr bool      `json:"is_err,omitempty"`
}

func encodeEntry(e Entry) ([]byte, error) {
	w, err := toWire(e.Reply)
	if err != nil {
		return nil, err
	}
	return json.Marshal(serializableEntry{Reply: w, Err: string(e.Err), IsErr: e.Err != ""})
}

func decodeEntry(data []byte) (Entry, error) {
	var se serializableEntry
	if err := json.Unmarshal(data, &se); err != nil {
		return Entry{}, err
	}
	r, err := fromWire(se.Reply)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Reply: r}
	if se.IsErr {
		e.Err = redis.Error(se.Err)
	}
	return e, nil
}

func toWire(v interface{}) (wireValue, error) {
	switch x := v.(type) {
	case nil:
		return wireValue{T: "nil"}, nil
	case []byte:
		return wireValue{T: "bulk", B: x}, nil
	case string:
		return wireValue{T: "str", S: x}, nil
	case int64:
		return wireValue{T: "int", I: x}, nil
	case redis.Error:
		return wireValue{T: "err", S: string(x)}, nil
	case []interface{}:
		items := make([]wireValue, len(x))
		for i, el := range x {
			w, err := toWire(el)
			if err != nil {
				return wireValue{}, err
			}
			items[i] = w
		}
		return wireValue{T: "arr", A: items}, nil
	}
	return wireValue{}, fmt.Errorf("%w: %T", ErrUnsupportedReply, v)
}

func fromWire(w wireValue) (interface{}, error) {
	switch w.T {
	case "nil":
		return nil, nil
	case "bulk":
		if w.B == nil {
			return []byte{}, nil
		}
		return w.B, nil
	case "str":
		return w.S, nil
	case "int":
		return w.I, nil
	case "err":
		return redis.Error(w.S), nil
	case "arr":
		items := make([]interface{}, len(w.A))
		for i, el := range w.A {
			v, err := fromWire(el)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	}
	return nil, fmt.Errorf("%w: wire tag %q", ErrUnsupportedReply, w.T)
}
