package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Aggregates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceTable(ctx, ordersTable()))

	rs, err := s.Query(ctx, `
		SELECT status, COUNT(*) AS orders, ROUND(SUM(total_amount), 2) AS revenue
		FROM orders GROUP BY status ORDER BY status`)
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "orders", "revenue"}, rs.Columns)
	assert.Equal(t, [][]any{
		{"canceled", int64(1), 12.25},
		{"delivered", int64(1), 71.5},
	}, rs.Rows)
}

func TestQuery_EmptyResultKeepsColumns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceTable(ctx, ordersTable()))

	rs, err := s.Query(ctx, "SELECT order_id FROM orders WHERE 1 = 0")
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id"}, rs.Columns)
	assert.Empty(t, rs.Rows)
}

func TestQuery_MalformedSQL(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Query(context.Background(), "SELEC nonsense FROM")
	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "query", serr.Op)
}

func TestQuery_UnknownTable(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Query(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_table")
}

func TestTables_EmptyStore(t *testing.T) {
	s := createTestStore(t)

	names, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
