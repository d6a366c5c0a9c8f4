package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/logging"
)

// ErrNotFound is returned when no run matches an id.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an id prefix matches several runs.
var ErrAmbiguousID = errors.New("ambiguous run id")

const keyPrefix = "run:"

// timeLayout is fixed width so keys sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var logger = logging.Get("history")

// Store wraps Badger for run history.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens or creates the history database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished generation report as a new run.
func (s *Store) Record(_ context.Context, report *generator.Report) error {
	ts := report.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}

	run := &Run{
		ID:        uuid.NewString(),
		Timestamp: ts.UTC(),
		Root:      report.Root,
		Duration:  report.Duration,
		Projects:  make([]ProjectRecord, 0, len(report.Projects)),
	}
	for _, p := range report.Projects {
		run.Projects = append(run.Projects, ProjectRecord{
			Name:   p.Name,
			Files:  p.Files,
			Hidden: p.Hidden,
			Bytes:  p.Bytes,
			Status: string(p.Status),
			Error:  p.Error,
		})
	}

	return s.Put(run)
}

// Put stores run under its timestamp and id.
func (s *Store) Put(run *Run) error {
	if run.ID == "" {
		return errors.New("run ID cannot be empty")
	}

	value, err := run.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(run.Timestamp, run.ID), value)
	})
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	logger.Debug("run recorded", "id", run.ID, "projects", len(run.Projects))
	return nil
}

// List returns runs newest first. If limit is 0 or negative, all runs are returned.
func (s *Store) List(limit int) ([]Run, error) {
	runs := []Run{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(append([]byte(keyPrefix), 0xff)); it.ValidForPrefix(prefix); it.Next() {
			var run Run
			if err := it.Item().Value(run.Decode); err != nil {
				logger.Warn("skipping unreadable run", "key", string(it.Item().Key()), "error", err)
				continue
			}
			runs = append(runs, run)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// Get returns the run with the given id. A unique id prefix is accepted.
func (s *Store) Get(id string) (*Run, error) {
	if id == "" {
		return nil, errors.New("run ID cannot be empty")
	}

	var (
		found   *Run
		match   []byte
		matches int
	)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			runID := keyID(item.Key())
			if !strings.HasPrefix(runID, id) {
				continue
			}
			if runID != id {
				matches++
				if match == nil {
					match = item.KeyCopy(nil)
				}
				continue
			}
			return decodeItem(item, &found)
		}

		switch {
		case matches > 1:
			return fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		case matches == 1:
			item, err := txn.Get(match)
			if err != nil {
				return err
			}
			return decodeItem(item, &found)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return found, nil
}

// Cleanup removes runs older than retention and returns how many were removed.
func (s *Store) Cleanup(retention time.Duration) (int, error) {
	cutoff := []byte(keyPrefix + s.now().Add(-retention).UTC().Format(timeLayout))

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if string(key) >= string(cutoff) {
				break
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("failed to remove runs: %w", err)
	}

	logger.Info("history cleaned", "removed", len(keys))
	return len(keys), nil
}

func decodeItem(item *badger.Item, dst **Run) error {
	var run Run
	if err := item.Value(run.Decode); err != nil {
		return fmt.Errorf("failed to decode run: %w", err)
	}
	*dst = &run
	return nil
}

func makeKey(ts time.Time, id string) []byte {
	return []byte(keyPrefix + ts.UTC().Format(timeLayout) + ":" + id)
}

// keyID extracts the run id from a key.
func keyID(key []byte) string {
	k := string(key)
	if i := strings.LastIndexByte(k, ':'); i >= 0 {
		return k[i+1:]
	}
	return ""
}
