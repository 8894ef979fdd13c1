package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/pkg/database"
)

// SignalFileStore implements contracts.SignalFileStore for PostgreSQL
type SignalFileStore struct {
	db *database.DB
}

var _ contracts.SignalFileStore = (*SignalFileStore)(nil)

// NewSignalFileStore creates a new signal file store
func NewSignalFileStore(db *database.DB) *SignalFileStore {
	return &SignalFileStore{db: db}
}

// Save inserts a signal file and returns the stored row
func (s *SignalFileStore) Save(ctx context.Context, filename, content string) (*contracts.SignalFile, error) {
	query := `
		INSERT INTO signal_files (filename, content)
		VALUES ($1, $2)
		RETURNING id, filename, content, created_at
	`

	file := &contracts.SignalFile{}
	err := s.db.Pool.QueryRow(ctx, query, filename, content).Scan(
		&file.ID, &file.Filename, &file.Content, &file.CreatedAt,
	)
	if err != nil {
		return nil, contracts.StorageError("failed to save signal file", err)
	}
	return file, nil
}

// Get retrieves a signal file by ID
func (s *SignalFileStore) Get(ctx context.Context, id int64) (*contracts.SignalFile, error) {
	query := `
		SELECT id, filename, content, created_at
		FROM signal_files
		WHERE id = $1
	`

	file := &contracts.SignalFile{}
	err := s.db.Pool.QueryRow(ctx, query, id).Scan(
		&file.ID, &file.Filename, &file.Content, &file.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.NotFoundError("signal file %d not found", id)
	}
	if err != nil {
		return nil, contracts.StorageError("failed to load signal file", err)
	}
	return file, nil
}
