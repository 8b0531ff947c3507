package webcam

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// Shrink resizes the local file according to the shrink policy and
// replaces it in place. It does nothing when the policy disables
// resizing or the local file was already resized since the last fetch.
// Calling it while a fetch is required yields ErrFetchRequired.
func (w *Webcam) Shrink() error {
	if !w.state.needsShrink() || w.shrink.IsNone() {
		w.state = w.state.shrunk()
		return nil
	}

	if w.state.needsFetch() {
		return errors.Wrapf(ErrFetchRequired, "shrinking in state %s", w.state)
	}

	if err := w.shrink.Validate(); err != nil {
		return err
	}

	raw, err := os.ReadFile(w.target)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return errors.Wrapf(ErrFileNotFound, "shrinking %q", w.target)
	default:
		return errors.Wrapf(ErrReadLocalFile, "reading %q: %s", w.target, err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrapf(ErrInvalidFileData, "decoding header of %q: %s", w.target, err)
	}
	if err = checkDimensions(cfg.Width, cfg.Height); err != nil {
		return errors.Wrapf(ErrInvalidFileData, "source image: %s", err)
	}

	width, height := w.shrink.Target(cfg.Width, cfg.Height)
	if err = checkDimensions(width, height); err != nil {
		return errors.Wrapf(ErrInvalidFileData, "resized image: %s", err)
	}

	src, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrapf(ErrInvalidFileData, "decoding %q: %s", w.target, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	buf := new(bytes.Buffer)
	if err = jpeg.Encode(buf, dst, &jpeg.Options{Quality: w.quality}); err != nil {
		return errors.Wrapf(ErrWriteLocalFile, "encoding resized image: %s", err)
	}

	if err = writeLocalFile(w.target, buf.Bytes()); err != nil {
		return err
	}

	w.state = w.state.shrunk()
	w.log.WithFields(logrus.Fields{
		"from":   []int{cfg.Width, cfg.Height},
		"to":     []int{width, height},
		"policy": w.shrink,
	}).Debug("resized image")

	return nil
}
