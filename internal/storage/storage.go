package storage

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

const snapshotPrefix = "snapshot/"

var (
	// ErrNotFound is returned when no snapshot exists under a name.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidName is returned for empty names or names containing '/'.
	ErrInvalidName = errors.New("invalid snapshot name")
	// ErrCorrupt is returned when a stored snapshot does not rebuild to the
	// position it was saved from.
	ErrCorrupt = errors.New("corrupt snapshot")
)

// corruptError reports ErrCorrupt while keeping the underlying cause
// reachable through errors.Is and errors.As.
type corruptError struct {
	cause error
}

func (e corruptError) Error() string { return ErrCorrupt.Error() + ": " + e.cause.Error() }

func (e corruptError) Unwrap() error { return e.cause }

func (e corruptError) Is(target error) bool { return target == ErrCorrupt }

func corrupt(err error, msg string) error {
	return corruptError{cause: errors.Wrap(err, msg)}
}

// Snapshot is a saved game: the arena layout and positional data needed to
// rebuild the board exactly, plus turn state, repetition history and the
// sticky threefold flag. FEN is informational.
type Snapshot struct {
	Layout     string         `json:"layout"`
	Positional string         `json:"positional"`
	FEN        string         `json:"fen"`
	Turn       string         `json:"turn"`
	TurnNumber int            `json:"turn_number"`
	Hash       uint64         `json:"hash"`
	History    map[uint64]int `json:"history,omitempty"`
	Threefold  bool           `json:"threefold,omitempty"`
	SavedAt    time.Time      `json:"saved_at"`
}

// Capture records b as a Snapshot. The caller must keep b from changing
// while it runs.
func Capture(b *board.Board) Snapshot {
	return Snapshot{
		Layout:     b.Layout(),
		Positional: b.PositionalDataString(),
		FEN:        b.ToFEN(),
		Turn:       b.CurrentTurn().String(),
		TurnNumber: b.TurnNumber(),
		Hash:       b.Hash(),
		History:    b.History(),
		Threefold:  b.ThreefoldRepetition(),
	}
}

// Restore rebuilds the board a Snapshot was captured from. The rebuilt hash
// must match the recorded one.
func Restore(s Snapshot) (*board.Board, error) {
	data, err := base64.StdEncoding.DecodeString(s.Positional)
	if err != nil {
		return nil, corrupt(err, "positional data")
	}
	b, err := board.NewBoardFromLayout(s.Layout, data)
	if err != nil {
		return nil, corrupt(err, "layout")
	}
	if b.Hash() != s.Hash {
		return nil, errors.Wrapf(ErrCorrupt, "hash %016x, recorded %016x", b.Hash(), s.Hash)
	}

	turn, ok := board.ParseColor(s.Turn)
	if !ok {
		return nil, errors.Wrapf(ErrCorrupt, "turn %q", s.Turn)
	}
	b.SetTurn(turn)
	if s.TurnNumber > 0 {
		b.SetTurnNumber(s.TurnNumber)
	}
	b.SetHistory(s.History)
	if s.Threefold {
		b.MarkThreefold()
	}
	return b, nil
}

// Option configures a Store.
type Option func(*badger.Options)

// WithLogger routes badger's internal logging to log.
func WithLogger(log zerolog.Logger) Option {
	return func(o *badger.Options) {
		o.Logger = badgerLogger{log: log.With().Str("component", "badger").Logger()}
	}
}

// InMemory keeps the database in memory. The directory is ignored.
func InMemory() Option {
	return func(o *badger.Options) {
		o.InMemory = true
		o.Dir, o.ValueDir = "", ""
	}
}

// Store wraps BadgerDB for snapshot persistence.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the snapshot database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	o := badger.DefaultOptions(dir)
	o.Logger = nil
	for _, opt := range opts {
		opt(&o)
	}

	db, err := badger.Open(o)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot db %q", dir)
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the database in GetDatabaseDir.
func OpenDefault(opts ...Option) (*Store, error) {
	dir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dir, opts...)
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func snapshotKey(name string) ([]byte, error) {
	if name == "" || strings.ContainsRune(name, '/') {
		return nil, errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return []byte(snapshotPrefix + name), nil
}

// SaveSnapshot stores snap under name, replacing any earlier snapshot.
// A zero SavedAt is set to the current time.
func (s *Store) SaveSnapshot(name string, snap Snapshot) error {
	key, err := snapshotKey(name)
	if err != nil {
		return err
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// LoadSnapshot returns the snapshot stored under name.
func (s *Store) LoadSnapshot(name string) (Snapshot, error) {
	var snap Snapshot
	key, err := snapshotKey(name)
	if err != nil {
		return snap, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	return snap, err
}

// ListSnapshots returns the stored snapshot names in sorted order.
func (s *Store) ListSnapshots() ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, snapshotPrefix))
		}
		return nil
	})

	sort.Strings(names)
	return names, err
}

// DeleteSnapshot removes the snapshot stored under name.
func (s *Store) DeleteSnapshot(name string) error {
	key, err := snapshotKey(name)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrNotFound, "%q", name)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// badgerLogger adapts zerolog to badger.Logger. Badger's info output is
// routine compaction chatter and is logged at debug.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}
