package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		sc, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(sc.Name, func(t *testing.T) {
			ctx := context.Background()
			res, err := Run(ctx, t.TempDir(), sc)
			require.NoError(t, err)
			require.NoError(t, Check(ctx, res, sc))
		})
	}
}
