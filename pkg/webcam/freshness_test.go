package webcam

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIsNewMissingFile(t *testing.T) {
	cs := newCamServer(t, nil)
	w := newTestWebcam(t, cs, Options{})

	stale, err := w.CheckIsNew(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
	assert.True(t, w.NeedsFetch())

	heads, gets := cs.counts()
	assert.Zero(t, heads+gets, "missing file must not contact the remote")
}

func TestCheckIsNewMaxAge(t *testing.T) {
	cs := newCamServer(t, jpegBytes(t, 16, 16))
	w := newTestWebcam(t, cs, Options{MaxAge: time.Second})

	_, err := w.Retrieve(context.Background())
	require.NoError(t, err)

	stale, err := w.CheckIsNew(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.False(t, w.NeedsFetch())

	old := time.Now().Add(-2 * time.Second)
	require.NoError(t, os.Chtimes(w.Target(), old, old))

	stale, err = w.CheckIsNew(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
	assert.True(t, w.NeedsFetch())

	heads, _ := cs.counts()
	assert.Zero(t, heads, "max-age check must not contact the remote")
}

func TestCheckIsNewMaxAgeWindow(t *testing.T) {
	cs := newCamServer(t, nil)

	for _, tc := range []struct {
		maxAge time.Duration
		age    time.Duration
		stale  bool
	}{
		{time.Minute, 30 * time.Second, false},
		{time.Minute, 2 * time.Minute, true},
		{time.Hour, 59 * time.Minute, false},
		{time.Hour, 61 * time.Minute, true},
	} {
		w := newTestWebcam(t, cs, Options{MaxAge: tc.maxAge})
		require.NoError(t, os.WriteFile(w.Target(), jpegSOI, 0o600))

		mtime := time.Now().Add(-tc.age)
		require.NoError(t, os.Chtimes(w.Target(), mtime, mtime))

		stale, err := w.CheckIsNew(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tc.stale, stale, "max-age %s, age %s", tc.maxAge, tc.age)
	}
}

func TestCheckIsNewHeaders(t *testing.T) {
	local := time.Now().Add(-time.Hour).Truncate(time.Second)

	for name, tc := range map[string]struct {
		header string
		value  time.Time
		stale  bool
		marker bool
	}{
		"modified later":   {"Last-Modified", local.Add(time.Minute), true, true},
		"modified earlier": {"Last-Modified", local.Add(-time.Minute), false, true},
		"expired":          {"Expires", time.Now().Add(-time.Minute), true, true},
		"not expired":      {"Expires", time.Now().Add(time.Hour), false, true},
		"no headers":       {"", time.Time{}, false, false},
	} {
		cs := newCamServer(t, nil)
		if tc.header != "" {
			cs.setHeader(tc.header, tc.value.UTC().Format(http.TimeFormat))
		}

		w := newTestWebcam(t, cs, Options{})
		require.NoError(t, os.WriteFile(w.Target(), jpegSOI, 0o600))
		require.NoError(t, os.Chtimes(w.Target(), local, local))

		stale, err := w.CheckIsNew(context.Background())
		require.NoError(t, err, name)
		assert.Equal(t, tc.stale, stale, name)
		assert.Equal(t, tc.stale, w.NeedsFetch(), name)

		marker, ok := w.RemoteExpiry()
		assert.Equal(t, tc.marker, ok, name)
		if tc.marker {
			assert.True(t, tc.value.Truncate(time.Second).Equal(marker), name)
		}

		heads, _ := cs.counts()
		assert.Equal(t, 1, heads, name)
	}
}

func TestCheckIsNewPrefersLastModified(t *testing.T) {
	local := time.Now().Add(-time.Hour).Truncate(time.Second)

	cs := newCamServer(t, nil)
	cs.setHeader("Last-Modified", local.Add(-time.Minute).UTC().Format(http.TimeFormat))
	cs.setHeader("Expires", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))

	w := newTestWebcam(t, cs, Options{})
	require.NoError(t, os.WriteFile(w.Target(), jpegSOI, 0o600))
	require.NoError(t, os.Chtimes(w.Target(), local, local))

	stale, err := w.CheckIsNew(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestCheckIsNewRemoteFailures(t *testing.T) {
	cs := newCamServer(t, nil)
	cs.set(nil, http.StatusInternalServerError)

	w := newTestWebcam(t, cs, Options{})
	require.NoError(t, os.WriteFile(w.Target(), jpegSOI, 0o600))

	_, err := w.CheckIsNew(context.Background())
	assert.True(t, errors.Is(err, ErrCheckRemote), "status: %v", err)

	cs.Close()
	_, err = w.CheckIsNew(context.Background())
	assert.True(t, errors.Is(err, ErrCheckRemote), "transport: %v", err)
}
