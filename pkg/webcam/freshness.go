package webcam

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CheckIsNew decides whether the local copy has to be fetched again and
// updates the state accordingly. A missing local file always requires a
// fetch. With a MaxAge the local modification time is compared against
// the clock, without one the remote is asked for its headers:
// a Last-Modified newer than the local file or an Expires date in the
// past marks the local copy stale.
func (w *Webcam) CheckIsNew(ctx context.Context) (bool, error) {
	modTime, exists, err := w.localModTime()
	if err != nil {
		return false, errors.Wrap(ErrCheckRemote, err.Error())
	}

	var stale bool
	switch {
	case !exists:
		stale = true

	case w.maxAge > 0:
		stale = time.Now().After(modTime.Add(w.maxAge))

	default:
		if stale, err = w.checkRemoteHeaders(ctx, modTime); err != nil {
			return false, err
		}
	}

	w.state = w.state.checked(stale)
	w.log.WithFields(logrus.Fields{
		"stale": stale,
		"state": w.state,
	}).Debug("checked freshness")

	return stale, nil
}

func (w *Webcam) checkRemoteHeaders(ctx context.Context, localMod time.Time) (bool, error) {
	code, hdr, err := w.remote.Head(ctx, w.url.String())
	if err != nil {
		return false, errors.Wrapf(ErrCheckRemote, "requesting headers: %s", err)
	}

	if code != http.StatusOK {
		return false, errors.Wrapf(ErrCheckRemote, "header request returned status %d", code)
	}

	if t, ok := parseHeaderDate(hdr, "Last-Modified"); ok {
		w.remoteExpiry = t
		return t.After(localMod), nil
	}

	if t, ok := parseHeaderDate(hdr, "Expires"); ok {
		w.remoteExpiry = t
		return time.Now().After(t), nil
	}

	return false, nil
}

func parseHeaderDate(hdr http.Header, key string) (time.Time, bool) {
	v := hdr.Get(key)
	if v == "" {
		return time.Time{}, false
	}

	t, err := http.ParseTime(v)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
