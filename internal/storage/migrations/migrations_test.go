package migrations

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFilesAreOrdered(t *testing.T) {
	files, err := Files(PostgresFS, "postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_signal_files.sql", "002_backtest_results.sql"}, files)

	files, err = Files(SQLiteFS, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, files)
}

func TestApplySkipsEmptyAndStopsOnError(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_a.sql": {Data: []byte("CREATE TABLE a (id INT);")},
		"m/002_b.sql": {Data: []byte("   \n")},
		"m/003_c.sql": {Data: []byte("BROKEN")},
		"m/004_d.sql": {Data: []byte("CREATE TABLE d (id INT);")},
	}

	var applied []string
	err := Apply(context.Background(), fsys, "m", ExecFunc(func(_ context.Context, sql string) error {
		if strings.HasPrefix(sql, "BROKEN") {
			return errors.New("syntax error")
		}
		applied = append(applied, sql)
		return nil
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "003_c.sql")
	assert.Equal(t, []string{"CREATE TABLE a (id INT);"}, applied)
}
