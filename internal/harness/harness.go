package harness

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/pipeline"
	"github.com/roach88/ecomkpi/internal/query"
	"github.com/roach88/ecomkpi/queries"
)

// configFile is the scenario config's name inside the project directory.
const configFile = "scenario.yaml"

// Result is a finished scenario run.
type Result struct {
	Scenario string
	Config   config.Config
	Run      *pipeline.Result
}

// Run executes sc in a fresh project under dir. The process environment
// is ignored so scenarios are reproducible anywhere.
func Run(ctx context.Context, dir string, sc *Scenario) (*Result, error) {
	slog.Debug("running scenario", "name", sc.Name, "dir", dir)

	opts := config.LoadOptions{
		Root:      dir,
		LookupEnv: func(string) (string, bool) { return "", false },
	}
	if sc.Config != "" {
		opts.File = filepath.Join(dir, configFile)
		if err := os.WriteFile(opts.File, []byte(sc.Config), 0o644); err != nil {
			return nil, fmt.Errorf("write scenario config: %w", err)
		}
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if err := installQueries(cfg.Paths.QueriesDir(), sc.Queries); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	res, err := pipeline.New(cfg).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return &Result{Scenario: sc.Name, Config: cfg, Run: res}, nil
}

// installQueries writes the selected bundled queries into dir.
func installQueries(dir string, names []string) error {
	if names == nil {
		_, _, err := query.Install(queries.FS, dir)
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range names {
		data, err := fs.ReadFile(queries.FS, name)
		if err != nil {
			return fmt.Errorf("bundled query %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
