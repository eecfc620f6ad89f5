package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/roach88/ecomkpi/internal/dataset"
)

// Environment variables read by Load.
const (
	EnvSeed       = "ECOMKPI_SEED"
	EnvCustomers  = "ECOMKPI_CUSTOMERS"
	EnvSessions   = "ECOMKPI_SESSIONS"
	EnvDatabase   = "ECOMKPI_DB"
	EnvQueries    = "ECOMKPI_QUERIES"
	EnvOutputs    = "ECOMKPI_OUTPUTS"
	EnvReports    = "ECOMKPI_REPORTS"
	EnvWorkbook   = "ECOMKPI_WORKBOOK"
	EnvMetrics    = "ECOMKPI_METRICS"
	EnvS3Bucket   = "ECOMKPI_S3_BUCKET"
	EnvS3Prefix   = "ECOMKPI_S3_PREFIX"
	EnvS3Region   = "ECOMKPI_S3_REGION"
	EnvS3Endpoint = "ECOMKPI_S3_ENDPOINT"
)

type lookupFunc func(string) (string, bool)

// newLookup prefers the process environment and falls back to the values
// in dotenvPath, which may not exist.
func newLookup(dotenvPath string, env lookupFunc) (lookupFunc, error) {
	if env == nil {
		env = os.LookupEnv
	}
	file, err := godotenv.Read(dotenvPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
		file = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}

func applyEnv(cfg *Config, lookup lookupFunc) error {
	var problems []string

	ints := map[string]func(int64){
		EnvSeed:      func(v int64) { cfg.Generation.Seed = v },
		EnvCustomers: func(v int64) { cfg.Generation.Customers = int(v) },
		EnvSessions:  func(v int64) { cfg.Generation.Sessions = int(v) },
	}
	for key, set := range ints {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %q is not an integer", key, raw))
			continue
		}
		set(v)
	}

	strs := map[string]*string{
		EnvDatabase:   &cfg.Paths.Database,
		EnvQueries:    &cfg.Paths.Queries,
		EnvOutputs:    &cfg.Paths.Outputs,
		EnvReports:    &cfg.Paths.Reports,
		EnvWorkbook:   &cfg.Workbook,
		EnvMetrics:    &cfg.Metrics,
		EnvS3Bucket:   &cfg.Publish.Bucket,
		EnvS3Prefix:   &cfg.Publish.Prefix,
		EnvS3Region:   &cfg.Publish.Region,
		EnvS3Endpoint: &cfg.Publish.Endpoint,
	}
	for key, dst := range strs {
		if raw, ok := lookup(key); ok && raw != "" {
			*dst = raw
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return &dataset.ConfigError{Problems: problems}
	}
	return nil
}
