package webcam

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Luzifer/webcam-cache/pkg/remote"
	"github.com/Luzifer/webcam-cache/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	archiveTimeFormat = "20060102150405"
	contentTypeJPEG   = "image/jpeg"
)

var jpegSOI = []byte{0xFF, 0xD8, 0xFF}

// Retrieve replaces the local copy with the current remote image if
// the state requires a fetch, otherwise it does nothing. The payload is
// downloaded and checked to be a JPEG before the previous local copy is
// handed to the archive (if configured) and the new one is written.
// The archive location of the previous copy is returned, it is empty
// when nothing was archived.
func (w *Webcam) Retrieve(ctx context.Context) (string, error) {
	if !w.state.needsFetch() {
		return "", nil
	}

	data, err := w.download(ctx)
	if err != nil {
		return "", err
	}

	if !bytes.HasPrefix(data, jpegSOI) {
		return "", errors.Wrapf(ErrInvalidFileData, "payload of %d bytes does not start with JPEG SOI marker", len(data))
	}

	archived, err := w.archivePrevious(ctx)
	if err != nil {
		return "", err
	}

	if err = writeLocalFile(w.target, data); err != nil {
		return archived, err
	}

	w.state = w.state.fetched()
	w.log.WithFields(logrus.Fields{
		"archived": archived,
		"size":     len(data),
	}).Info("retrieved image")

	return archived, nil
}

func (w *Webcam) download(ctx context.Context) ([]byte, error) {
	body, err := w.remote.Get(ctx, w.url.String())
	if err != nil {
		var se remote.StatusError
		if errors.As(err, &se) {
			return nil, errors.Wrapf(ErrFetch, "remote status %d", se.Code)
		}
		return nil, errors.Wrap(err, "fetching image")
	}
	defer func() {
		if err := body.Close(); err != nil {
			w.log.WithError(err).Error("closing response body (leaked connection)")
		}
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "reading image payload")
	}

	return data, nil
}

func (w *Webcam) archivePrevious(ctx context.Context) (string, error) {
	if w.archive == nil {
		return "", nil
	}

	modTime, exists, err := w.localModTime()
	if err != nil {
		return "", errors.Wrap(ErrWriteLocalFile, err.Error())
	}
	if !exists {
		return "", nil
	}

	name := archiveName(filepath.Base(w.target), modTime)
	location, err := w.archive.Store(ctx, w.target, name, &storage.Meta{
		ContentType:  contentTypeJPEG,
		LastModified: modTime,
	})
	if err != nil {
		return "", errors.Wrapf(ErrWriteLocalFile, "archiving %q as %q: %s", w.target, name, err)
	}

	w.log.WithField("location", location).Debug("archived previous copy")
	return location, nil
}

// archiveName builds <basename>-<YYYYMMDDHHMMSS>.<ext> from the file
// name and its modification time
func archiveName(fileName string, modTime time.Time) string {
	ext := filepath.Ext(fileName)
	return strings.Join([]string{
		strings.TrimSuffix(fileName, ext),
		modTime.UTC().Format(archiveTimeFormat),
	}, "-") + ext
}
