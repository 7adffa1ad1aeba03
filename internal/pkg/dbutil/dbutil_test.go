package dbutil

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRebindsAndSwapsLimit(t *testing.T) {
	query, args := Finalize("SELECT id FROM books WHERE title = ? LIMIT ?, ?", []interface{}{"go", 0, 10})
	require.Equal(t, "SELECT id FROM books WHERE title = $1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"go", 10, 0}, args)
}

func TestFinalizeWithoutLimit(t *testing.T) {
	query, args := Finalize("DELETE FROM search_embeddings WHERE owner_type = ? AND owner_id = ?", []interface{}{"book", "1"})
	require.Equal(t, "DELETE FROM search_embeddings WHERE owner_type = $1 AND owner_id = $2", query)
	require.Len(t, args, 2)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.True(t, IsConflict(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(fmt.Errorf("boom")))
}
