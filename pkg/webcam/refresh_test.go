package webcam

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Luzifer/webcam-cache/pkg/storage/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshCycle(t *testing.T) {
	archiveDir := t.TempDir()
	cs := newCamServer(t, jpegBytes(t, 400, 300))
	w := newTestWebcam(t, cs, Options{
		Archive: local.New(archiveDir),
		MaxAge:  time.Minute,
		Shrink:  ShrinkDimensions(200, 150),
	})

	res, err := w.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fetched)
	assert.Empty(t, res.Archived)

	gotW, gotH := imageSize(t, w.Target())
	assert.Equal(t, []int{200, 150}, []int{gotW, gotH})

	res, err = w.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Fetched, "fresh copy must not be fetched again")

	old := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(w.Target(), old, old))

	res, err = w.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fetched)
	assert.NotEmpty(t, res.Archived)

	gotW, gotH = imageSize(t, res.Archived)
	assert.Equal(t, []int{200, 150}, []int{gotW, gotH}, "archive keeps the resized copy")

	_, gets := cs.counts()
	assert.Equal(t, 2, gets)
}
