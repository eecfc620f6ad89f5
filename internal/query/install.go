package query

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// Install copies the root *.sql files of fsys into dir. Files already present
// in dir are never overwritten. It returns the names written and the names
// kept, each sorted.
func Install(fsys fs.FS, dir string) (written, kept []string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", dir, err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("read bundled queries: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != Ext {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return written, kept, fmt.Errorf("read %s: %w", e.Name(), err)
		}

		target := filepath.Join(dir, e.Name())
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			kept = append(kept, e.Name())
			continue
		}
		if err != nil {
			return written, kept, fmt.Errorf("create %s: %w", target, err)
		}
		_, werr := f.Write(data)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return written, kept, fmt.Errorf("write %s: %w", target, werr)
		}
		written = append(written, e.Name())
	}
	return written, kept, nil
}
