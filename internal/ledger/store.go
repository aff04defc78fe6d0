package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/id"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

// Store is an append-only collection of ledger entries. Append assigns Seq and
// ID to each entry and commits the whole batch or nothing.
type Store interface {
	Append(entries ...model.Entry) ([]model.Entry, error)
	Entries() []model.Entry
	NextSeq() uint64
}

// MemoryStore keeps entries in memory only.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append validates and stores entries, returning them with Seq and ID set.
func (s *MemoryStore) Append(entries ...model.Entry) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamped, err := stamp(nextSeq(s.entries), entries)
	if err != nil {
		return nil, err
	}
	s.entries = append(s.entries, stamped...)
	return stamped, nil
}

// Entries returns a copy of all entries in append order.
func (s *MemoryStore) Entries() []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// NextSeq returns the seq the next appended entry will receive.
func (s *MemoryStore) NextSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nextSeq(s.entries)
}

// FileStore persists entries to <root>/ledger/entries.csv and serves reads
// from memory.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	entries []model.Entry
}

// OpenFileStore loads <root>/ledger/entries.csv, which need not exist yet.
func OpenFileStore(root string) (*FileStore, error) {
	path := filepath.Join(root, "ledger", "entries.csv")
	s := &FileStore{path: path}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	s.entries = entries
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Append validates entries, writes them to disk and then to memory.
func (s *FileStore) Append(entries ...model.Entry) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamped, err := stamp(nextSeq(s.entries), entries)
	if err != nil {
		return nil, err
	}

	// Append to ledger file (create dir + header if new).
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	write := AppendEntries
	if isNew {
		write = WriteEntries
	}
	if err := write(f, stamped); err != nil {
		return nil, fmt.Errorf("appending entries: %w", err)
	}

	s.entries = append(s.entries, stamped...)
	return stamped, nil
}

// Entries returns a copy of all entries in append order.
func (s *FileStore) Entries() []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// NextSeq returns the seq the next appended entry will receive.
func (s *FileStore) NextSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nextSeq(s.entries)
}

func nextSeq(entries []model.Entry) uint64 {
	if len(entries) == 0 {
		return 1
	}
	return entries[len(entries)-1].Seq + 1
}

// stamp checks required fields and assigns consecutive seqs starting at next.
func stamp(next uint64, entries []model.Entry) ([]model.Entry, error) {
	if len(entries) == 0 {
		return nil, apperrors.Validation("entries", "nothing to append")
	}
	out := make([]model.Entry, len(entries))
	for i, e := range entries {
		if err := checkRequired(e); err != nil {
			return nil, err
		}
		e.Seq = next + uint64(i)
		e.ID = id.FormatEntryID(e.Seq)
		out[i] = e
	}
	return out, nil
}

func checkRequired(e model.Entry) error {
	switch {
	case !e.Direction.Valid():
		return apperrors.Validation("direction", "invalid direction %q", e.Direction)
	case e.Timestamp.IsZero():
		return apperrors.Validation("timestamp", "is required")
	case e.Currency == "":
		return apperrors.Validation("currency", "is required")
	case e.Amount.IsNegative():
		return apperrors.Validation("amount", "must not be negative")
	case money.HasExcessPrecision(e.Amount, e.Currency):
		return apperrors.Validation("amount", "%s has more than %d decimal places", e.Amount, money.MinorUnits(e.Currency))
	}
	return nil
}
