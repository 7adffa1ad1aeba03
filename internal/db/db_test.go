package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mlibrary/internal/config"
)

func TestDSN(t *testing.T) {
	require.Equal(t, "postgres://x", DSN(config.DatabaseConfig{DSN: "postgres://x", Host: "ignored"}))
	require.Equal(t,
		"host=db port=5432 user=u password=p dbname=lib sslmode=disable",
		DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "lib"}),
	)
}

func TestMigrationsParse(t *testing.T) {
	content, err := migrationsFS.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)
	stmts := splitStatements(string(content))
	require.NotEmpty(t, stmts)
	var hasCache bool
	for _, stmt := range stmts {
		require.NotEmpty(t, stmt)
		if strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS search_embeddings") {
			hasCache = true
		}
	}
	require.True(t, hasCache)
}
