package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/annotation-audit/internal/imaging"
)

func pngBytes(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFetcher_Remote(t *testing.T) {
	data := pngBytes(t, 8, 6, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher(imaging.NewImageCache(), "", time.Second)
	img, err := f.Fetch(context.Background(), srv.URL+"/one.png")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	// Second fetch is served from the cache
	_, err = f.Fetch(context.Background(), srv.URL+"/one.png")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetcher_RemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte("not an image"))
		}
	}))
	defer srv.Close()

	f := NewFetcher(imaging.NewImageCache(), "", time.Second)

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"status", "/missing.png", "HTTP status 404"},
		{"undecodable", "/garbage.png", "failed to decode image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), srv.URL+tt.path)
			require.Error(t, err)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, srv.URL+tt.path, fetchErr.URL)
			assert.Equal(t, tt.message, fetchErr.Message)
		})
	}
}

func TestFetcher_RemoteCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(imaging.NewImageCache(), "", time.Second)
	_, err := f.Fetch(ctx, srv.URL+"/slow.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetcher_Local(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
	path := filepath.Join(dir, "images", "one.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 4, 3, color.White), 0644))

	f := NewFetcher(imaging.NewImageCache(), dir, 0)

	img, err := f.Fetch(context.Background(), "images/one.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	img, err = f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dy())

	img, err = f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestFetcher_LocalMissing(t *testing.T) {
	f := NewFetcher(imaging.NewImageCache(), t.TempDir(), 0)
	_, err := f.Fetch(context.Background(), "nope.png")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "failed to load local image", fetchErr.Message)
}
