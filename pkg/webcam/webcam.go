// Package webcam mirrors a single remote JPEG image into a local file.
//
// A Webcam decides whether the local copy is outdated (CheckIsNew),
// replaces it with a validated fresh copy while archiving the previous
// one (Retrieve), optionally resizes it (Shrink) and delivers it to
// HTTP clients (SendToClient). The operations must be called in this
// order, violations are reported as ErrFetchRequired.
//
// A Webcam is not safe for concurrent use and two instances must not
// share the same target file.
package webcam

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/Luzifer/webcam-cache/pkg/remote"
	"github.com/Luzifer/webcam-cache/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultQuality is the JPEG quality used to encode resized images
const DefaultQuality = 85

type (
	// Remote is the HTTP client collaborator used to talk to the webcam
	Remote interface {
		// Head issues a headers-only request
		Head(ctx context.Context, url string) (int, http.Header, error)
		// Get returns the payload of a full request, the caller closes it
		Get(ctx context.Context, url string) (io.ReadCloser, error)
	}

	// Options configure a Webcam, all fields are optional
	Options struct {
		// Target is the local file path, defaults to the base name of
		// the remote path in the working directory
		Target string
		// Archive receives the previous local copy before it is
		// replaced, nil disables archiving
		Archive storage.Archive
		// MaxAge is the time a local copy is considered fresh without
		// contacting the remote. 0 enables checking the remote headers.
		MaxAge time.Duration
		// Shrink selects how the fetched file is resized
		Shrink ShrinkPolicy
		// Quality is the JPEG quality for resized images (1-100)
		Quality int

		Remote Remote
		Logger logrus.FieldLogger
	}

	// Webcam represents the pairing of one remote image and its local copy
	Webcam struct {
		url     *url.URL
		target  string
		archive storage.Archive
		maxAge  time.Duration
		shrink  ShrinkPolicy
		quality int
		remote  Remote
		log     logrus.FieldLogger

		state        state
		remoteExpiry time.Time
	}
)

// New parses the remote URL and creates a Webcam from it
func New(rawURL string, opts Options) (*Webcam, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "parsing URL %q: %s", rawURL, err)
	}

	return NewFromURL(u, opts)
}

// NewFromURL creates a Webcam for an already parsed URL
func NewFromURL(u *url.URL, opts Options) (*Webcam, error) {
	if u.Scheme != "http" || u.Hostname() == "" {
		return nil, errors.Wrapf(ErrInvalidArgument, "URL %q is no http URL with host", u.String())
	}

	if err := opts.Shrink.Validate(); err != nil {
		return nil, err
	}

	if opts.MaxAge < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "negative max-age %s", opts.MaxAge)
	}

	if opts.Quality == 0 {
		opts.Quality = DefaultQuality
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, errors.Wrapf(ErrInvalidArgument, "JPEG quality %d not in range 1-100", opts.Quality)
	}

	if opts.Target == "" {
		opts.Target = DefaultFileName(u)
		if opts.Target == "" {
			return nil, errors.Wrapf(ErrInvalidArgument, "URL path %q has no file name, target required", u.Path)
		}
	}

	if opts.Remote == nil {
		opts.Remote = remote.New(remote.Options{})
	}

	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}

	w := &Webcam{
		url:     u,
		target:  opts.Target,
		archive: opts.Archive,
		maxAge:  opts.MaxAge,
		shrink:  opts.Shrink,
		quality: opts.Quality,
		remote:  opts.Remote,
		log: opts.Logger.WithFields(logrus.Fields{
			"url":    u.String(),
			"target": opts.Target,
		}),
	}

	_, err := os.Stat(w.target)
	w.state = initialState(err == nil)

	return w, nil
}

// DefaultFileName derives the local file name from the URL path. An
// empty string is returned when the path has no file name.
func DefaultFileName(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// URL returns the remote URL
func (w *Webcam) URL() *url.URL { return w.url }

// Host returns the remote host name
func (w *Webcam) Host() string { return w.url.Hostname() }

// Port returns the remote port, defaulting to 80
func (w *Webcam) Port() string {
	if p := w.url.Port(); p != "" {
		return p
	}
	return "80"
}

// Target returns the local file path
func (w *Webcam) Target() string { return w.target }

// RemoteExpiry returns the Last-Modified or Expires date used by the
// last header-based freshness check. ok is false before such a check
// found a date.
func (w *Webcam) RemoteExpiry() (t time.Time, ok bool) {
	return w.remoteExpiry, !w.remoteExpiry.IsZero()
}

// NeedsFetch reports whether Retrieve will contact the remote
func (w *Webcam) NeedsFetch() bool { return w.state.needsFetch() }

// NeedsShrink reports whether the local file still has to be resized
func (w *Webcam) NeedsShrink() bool { return w.state.needsShrink() }

func (w *Webcam) localModTime() (time.Time, bool, error) {
	fi, err := os.Stat(w.target)
	switch {
	case err == nil:
		return fi.ModTime(), true, nil
	case os.IsNotExist(err):
		return time.Time{}, false, nil
	default:
		return time.Time{}, false, errors.Wrap(err, "getting local file stat")
	}
}
