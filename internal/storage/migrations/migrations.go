package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Execer is satisfied by *pgxpool.Pool (via an adapter) and *sql.DB
type Execer interface {
	ExecSQL(ctx context.Context, sql string) error
}

// ExecFunc adapts a function to Execer
type ExecFunc func(ctx context.Context, sql string) error

// ExecSQL implements Execer
func (f ExecFunc) ExecSQL(ctx context.Context, sql string) error {
	return f(ctx, sql)
}

// Files returns the migration files under dir in lexical order
func Files(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Apply runs every migration under dir. Migrations are idempotent.
func Apply(ctx context.Context, fsys fs.FS, dir string, db Execer) error {
	files, err := Files(fsys, dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if err := db.ExecSQL(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
