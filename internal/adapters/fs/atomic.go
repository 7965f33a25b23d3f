// Package fs provides the file primitives shared by the on-disk stores:
// atomic replacement, content checksums and directory listing.
package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/zerr"
)

// WriteFileAtomic replaces path with data. Readers observe either the old
// content or the new content, never a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "dir", dir)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temp file"), "dir", dir)
	}
	tmpName := tmpFile.Name()

	// Remove the temp file unless it was renamed into place.
	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return zerr.With(zerr.Wrap(err, "failed to sync temp file"), "path", path)
	}

	if err := tmpFile.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close temp file"), "path", path)
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to chmod temp file"), "path", path)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to rename temp file"), "path", path)
	}

	return nil
}
