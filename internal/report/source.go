package report

import (
	"log/slog"
	"path/filepath"

	"github.com/roach88/ecomkpi/internal/tabular"
)

// ArtifactSource looks up a query artifact by name (without extension).
// A missing, empty or unreadable artifact reports false; it is never an error.
type ArtifactSource interface {
	Load(name string) (*tabular.Frame, bool)
}

// DirSource reads <Dir>/<name>.csv.
type DirSource struct {
	Dir string
}

// Load implements ArtifactSource.
func (s DirSource) Load(name string) (*tabular.Frame, bool) {
	f, err := tabular.ReadCSVFile(filepath.Join(s.Dir, name+".csv"))
	if err != nil {
		slog.Debug("artifact unavailable", "artifact", name, "error", err)
		return nil, false
	}
	if f.Empty() {
		return nil, false
	}
	return f, true
}
