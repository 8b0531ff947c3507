package webcam

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// SendToClient writes the local file to the client including caching
// headers. Conditional requests are answered by http.ServeContent. A
// nil ResponseWriter means there is no client to deliver to and yields
// ErrCannotSend.
func (w *Webcam) SendToClient(rw http.ResponseWriter, r *http.Request) error {
	if rw == nil || r == nil {
		return errors.Wrap(ErrCannotSend, "no client connection")
	}

	fi, err := os.Stat(w.target)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return errors.Wrapf(ErrFileNotFound, "sending %q", w.target)
	default:
		return errors.Wrapf(ErrReadLocalFile, "getting stat of %q: %s", w.target, err)
	}

	data, err := os.ReadFile(w.target)
	if err != nil {
		return errors.Wrapf(ErrReadLocalFile, "reading %q: %s", w.target, err)
	}
	if len(data) == 0 {
		return errors.Wrapf(ErrReadLocalFile, "local file %q is empty", w.target)
	}

	modTime := fi.ModTime()

	rw.Header().Set("Content-Type", contentTypeJPEG)
	rw.Header().Set("Content-Length", strconv.Itoa(len(data)))
	rw.Header().Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))
	rw.Header().Set("Cache-Control", "public")
	rw.Header().Set("ETag", etag(modTime.Unix(), w.target))

	http.ServeContent(rw, r, filepath.Base(w.target), modTime, bytes.NewReader(data))
	return nil
}

// RemoveLocalFile deletes the local copy if present. Failures are
// logged, never returned.
func (w *Webcam) RemoveLocalFile() {
	if err := os.Remove(w.target); err != nil && !os.IsNotExist(err) {
		w.log.WithError(err).Warn("removing local file")
	}
}

func etag(modTime int64, target string) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sha256.Sum256([]byte(strconv.FormatInt(modTime, 10)+target))))
}
