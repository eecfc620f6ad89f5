package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/query"
	"github.com/roach88/ecomkpi/queries"
)

// Project returns the default configuration rooted in a fresh temp dir,
// shrunk to customers and sessions, with the bundled queries installed.
func Project(t *testing.T, customers, sessions int) config.Config {
	t.Helper()
	cfg := EmptyProject(t, customers, sessions)
	_, _, err := query.Install(queries.FS, cfg.Paths.QueriesDir())
	require.NoError(t, err)
	return cfg
}

// EmptyProject is Project without any query files or directories.
func EmptyProject(t *testing.T, customers, sessions int) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	cfg.Generation.Customers = customers
	cfg.Generation.Sessions = sessions
	return cfg
}
