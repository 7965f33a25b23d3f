package fs

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"sort"
	"strings"

	"go.trai.ch/zerr"
)

// FilesWithSuffix yields the names of regular files in dir ending in suffix,
// sorted by name. Hidden files (temp files included) are skipped.
// A missing directory yields nothing.
func FilesWithSuffix(dir, suffix string) (iter.Seq[string], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return func(func(string) bool) {}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read directory"), "dir", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, suffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return func(yield func(string) bool) {
		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}, nil
}
