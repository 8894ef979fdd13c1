package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wonny/backtester/internal/contracts"
)

// SignalFileStore implements contracts.SignalFileStore on SQLite
type SignalFileStore struct {
	db  *DB
	now func() time.Time
}

var _ contracts.SignalFileStore = (*SignalFileStore)(nil)

// NewSignalFileStore creates a new signal file store
func NewSignalFileStore(db *DB) *SignalFileStore {
	return &SignalFileStore{db: db, now: time.Now}
}

// Save inserts a signal file
func (s *SignalFileStore) Save(ctx context.Context, filename, content string) (*contracts.SignalFile, error) {
	createdAt := s.now().UTC().Truncate(time.Millisecond)

	res, err := s.db.SQL.ExecContext(ctx,
		`INSERT INTO signal_files (filename, content, created_at) VALUES (?, ?, ?)`,
		filename, content, createdAt.UnixMilli(),
	)
	if err != nil {
		return nil, contracts.StorageError("failed to save signal file", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, contracts.StorageError("failed to read signal file id", err)
	}

	return &contracts.SignalFile{
		ID:        id,
		Filename:  filename,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// Get retrieves a signal file by ID
func (s *SignalFileStore) Get(ctx context.Context, id int64) (*contracts.SignalFile, error) {
	var (
		file      contracts.SignalFile
		createdAt int64
	)

	err := s.db.SQL.QueryRowContext(ctx,
		`SELECT id, filename, content, created_at FROM signal_files WHERE id = ?`, id,
	).Scan(&file.ID, &file.Filename, &file.Content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contracts.NotFoundError("signal file %d not found", id)
	}
	if err != nil {
		return nil, contracts.StorageError("failed to load signal file", err)
	}

	file.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &file, nil
}
