package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	cols := []string{"id", "search_id", "token", "payload"}
	rows := [][]any{
		{"r1", "s1", "s1:a", `{"a":1}`},
		{"r2", "s1", "s1:b", `{"b":2}`},
	}

	pool.ExpectCopyFrom(pgx.Identifier{"search_results_archive"}, cols).WillReturnResult(2)

	n, copyErr := CopyFrom(context.Background(), pool, "search_results_archive", cols, rows)
	require.NoError(t, copyErr)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestCopyFrom_EmptyRows(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	n, copyErr := CopyFrom(context.Background(), pool, "search_results_archive", []string{"id"}, nil)
	require.NoError(t, copyErr)
	assert.Zero(t, n)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectCopyFrom(pgx.Identifier{"search_results_archive"}, []string{"id"}).
		WillReturnError(assert.AnError)

	_, copyErr := CopyFrom(context.Background(), pool, "search_results_archive", []string{"id"}, [][]any{{"r1"}})
	require.Error(t, copyErr)
	assert.Contains(t, copyErr.Error(), "COPY INTO search_results_archive")
}
