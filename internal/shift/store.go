package shift

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cleared-dev/cashbox/internal/model"
)

// Store persists shift sessions. Save records the session's current state;
// a later Save for the same ID supersedes the earlier one.
type Store interface {
	Sessions() []model.Session
	Save(s model.Session) error
}

// MemoryStore keeps sessions in memory only.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []model.Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Sessions returns all sessions in creation order.
func (m *MemoryStore) Sessions() []model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.sessions)
}

// Save inserts or replaces a session by ID.
func (m *MemoryStore) Save(s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = upsert(m.sessions, s)
	return nil
}

// FileStore appends one row per session event to <root>/ledger/sessions.csv.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	sessions []model.Session
}

// OpenFileStore loads <root>/ledger/sessions.csv, which need not exist yet.
func OpenFileStore(root string) (*FileStore, error) {
	path := filepath.Join(root, "ledger", "sessions.csv")
	s := &FileStore{path: path}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening sessions %s: %w", path, err)
	}
	defer f.Close()

	sessions, err := readSessions(f)
	if err != nil {
		return nil, fmt.Errorf("reading sessions %s: %w", path, err)
	}
	s.sessions = sessions
	return s, nil
}

// Sessions returns all sessions in creation order.
func (s *FileStore) Sessions() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions)
}

// Save appends the session state to disk and then updates memory.
func (s *FileStore) Save(session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening sessions: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(MarshalSession(session)); err != nil {
		return fmt.Errorf("writing session %s: %w", session.ID, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing sessions: %w", err)
	}

	s.sessions = upsert(s.sessions, session)
	return nil
}

func upsert(sessions []model.Session, s model.Session) []model.Session {
	for i := range sessions {
		if sessions[i].ID == s.ID {
			sessions[i] = s
			return sessions
		}
	}
	return append(sessions, s)
}
