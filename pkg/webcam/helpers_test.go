package webcam

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type camServer struct {
	*httptest.Server

	mu      sync.Mutex
	payload []byte
	status  int
	header  http.Header
	heads   int
	gets    int
}

func newCamServer(t *testing.T, payload []byte) *camServer {
	t.Helper()

	cs := &camServer{payload: payload, status: http.StatusOK, header: http.Header{}}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.handle))
	t.Cleanup(cs.Close)

	return cs
}

func (c *camServer) handle(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range c.header {
		w.Header()[k] = v
	}

	switch r.Method {
	case http.MethodHead:
		c.heads++
		w.WriteHeader(c.status)
	case http.MethodGet:
		c.gets++
		w.WriteHeader(c.status)
		_, _ = w.Write(c.payload)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (c *camServer) set(payload []byte, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload, c.status = payload, status
}

func (c *camServer) setHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header.Set(key, value)
}

func (c *camServer) counts() (heads, gets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heads, c.gets
}

func (c *camServer) imageURL() string { return c.URL + "/images/cam.jpg" }

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func newTestWebcam(t *testing.T, cs *camServer, opts Options) *Webcam {
	t.Helper()

	if opts.Target == "" {
		opts.Target = filepath.Join(t.TempDir(), "cam.jpg")
	}

	w, err := New(cs.imageURL(), opts)
	require.NoError(t, err)
	return w
}
