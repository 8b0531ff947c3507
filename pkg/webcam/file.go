package webcam

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const localFilePermission = 0o644

// writeLocalFile replaces the file at target with data. The data is
// written to a temporary file next to the target which is renamed over
// it once complete, so readers never see a partial file.
func writeLocalFile(target string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return errors.Wrapf(ErrWriteLocalFile, "creating temp file for %q: %s", target, err)
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	n, err := f.Write(data)
	if err != nil {
		return errors.Wrapf(ErrWriteLocalFile, "writing %q: %s", tmp, err)
	}
	if n != len(data) {
		return errors.Wrapf(ErrWriteLocalFile, "wrote %d of %d bytes to %q", n, len(data), tmp)
	}

	if err = f.Sync(); err != nil {
		return errors.Wrapf(ErrWriteLocalFile, "flushing %q: %s", tmp, err)
	}

	if err = f.Chmod(localFilePermission); err != nil {
		return errors.Wrapf(ErrWriteLocalFile, "setting permissions on %q: %s", tmp, err)
	}

	if err = f.Close(); err != nil {
		return errors.Wrapf(ErrWriteLocalFile, "closing %q: %s", tmp, err)
	}

	if err = os.Rename(tmp, target); err != nil {
		return errors.Wrapf(ErrWriteLocalFile, "moving %q to %q: %s", tmp, target, err)
	}

	return nil
}
