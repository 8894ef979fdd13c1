package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/backtester/internal/contracts"
)

// SignalFileStore is an in-memory implementation of contracts.SignalFileStore.
type SignalFileStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*contracts.SignalFile
}

var _ contracts.SignalFileStore = (*SignalFileStore)(nil)

// NewSignalFileStore creates a new in-memory signal file store.
func NewSignalFileStore() *SignalFileStore {
	return &SignalFileStore{
		data: make(map[int64]*contracts.SignalFile),
	}
}

// Save assigns the next ID and stores a copy.
func (s *SignalFileStore) Save(_ context.Context, filename, content string) (*contracts.SignalFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	file := &contracts.SignalFile{
		ID:        s.nextID,
		Filename:  filename,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.data[file.ID] = file

	fileCopy := *file
	return &fileCopy, nil
}

// Get returns a copy of the file or a not_found error.
func (s *SignalFileStore) Get(_ context.Context, id int64) (*contracts.SignalFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.data[id]
	if !ok {
		return nil, contracts.NotFoundError("signal file %d not found", id)
	}

	fileCopy := *file
	return &fileCopy, nil
}
