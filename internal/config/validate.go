package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/ecomkpi/internal/dataset"
)

var validate = validator.New()

// Validate checks the generation parameters and paths and reports every
// problem in one *dataset.ConfigError.
func (c Config) Validate() error {
	var problems []string

	if err := c.Generation.Validate(); err != nil {
		var cfgErr *dataset.ConfigError
		if !errors.As(err, &cfgErr) {
			return err
		}
		problems = append(problems, cfgErr.Problems...)
	}

	if err := validate.Struct(c.Paths); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("paths.%s is required", strings.ToLower(fe.Field())))
		}
	}

	if c.Publish.Enabled() && c.Publish.Region == "" && c.Publish.Endpoint == "" {
		problems = append(problems, "publish.region is required when publish.bucket is set")
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &dataset.ConfigError{Problems: problems}
}
