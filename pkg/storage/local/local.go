// Package local implements a storage.Archive backend moving files into a local directory
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/Luzifer/webcam-cache/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const archiveFilePermission = 0o644

// Storage implements the storage.Archive interface for local directories
type Storage struct {
	basePath string
}

// New returns a new local archive. The directory is not created: it
// must exist when Store is called.
func New(basePath string) Storage { return Storage{basePath} }

// Store implements the storage.Archive Store method
func (s Storage) Store(_ context.Context, srcPath, name string, metadata *storage.Meta) (string, error) {
	fi, err := os.Stat(s.basePath)
	if err != nil {
		return "", fmt.Errorf("getting archive dir stat: %w", err)
	}
	if !fi.IsDir() {
		return "", errors.Errorf("archive path %q is not a directory", s.basePath)
	}

	dest := path.Join(s.basePath, name)

	if err = os.Rename(srcPath, dest); err == nil {
		return dest, nil
	}

	// Rename fails across filesystems, fall back to copy and remove
	if err = copyFile(srcPath, dest, metadata); err != nil {
		return "", errors.Wrap(err, "copy file into archive")
	}

	if err = os.Remove(srcPath); err != nil {
		return "", errors.Wrap(err, "remove archived source file")
	}

	return dest, nil
}

func copyFile(srcPath, dest string, metadata *storage.Meta) (err error) {
	src, err := os.Open(srcPath) //#nosec:G304 // Safe source of variable
	if err != nil {
		return errors.Wrap(err, "open source file")
	}
	defer func() {
		if err := src.Close(); err != nil {
			logrus.WithError(err).Error("closing source file (leaked fd)")
		}
	}()

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, archiveFilePermission) //#nosec:G304 // Safe source of variable
	if err != nil {
		return errors.Wrap(err, "create archive file")
	}

	if _, err = io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return errors.Wrap(err, "write archive file")
	}

	if err = f.Close(); err != nil {
		_ = os.Remove(dest)
		return errors.Wrap(err, "close archive file")
	}

	if metadata != nil && !metadata.LastModified.IsZero() {
		return errors.Wrap(
			os.Chtimes(dest, metadata.LastModified, metadata.LastModified),
			"restore modification time",
		)
	}

	return nil
}
