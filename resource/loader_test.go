package resource

import (
	"bytes"
	"context"
	"encoding/base64"
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

	"github.com/gogpu/overlaycam/layer"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func waitFor(t *testing.T, f *Future) (image.Image, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 4, 3, color.White), 0o600))

	l := NewLoader()
	defer l.Close()

	img, err := waitFor(t, l.Load(Source{Path: path}))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestLoadFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 2, 2, color.Black), 0o600))

	l := NewLoader()
	defer l.Close()

	img, err := waitFor(t, l.Load(Source{URL: "file://" + filepath.ToSlash(path)}))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
}

func TestLoadDataURI(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 5, 5, color.White))

	l := NewLoader()
	defer l.Close()

	img, err := waitFor(t, l.Load(Source{URL: uri}))
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestLoadRemote(t *testing.T) {
	data := pngBytes(t, 8, 6, color.White)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "overlaycam-test", r.UserAgent())
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()), WithUserAgent("overlaycam-test"))
	defer l.Close()

	f1 := l.Load(Source{URL: srv.URL + "/a.png"})
	f2 := l.Load(Source{URL: srv.URL + "/a.png"})
	assert.Same(t, f1, f2)

	img, err := waitFor(t, f1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoadRemoteStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	defer l.Close()

	f := l.Load(Source{URL: srv.URL + "/missing.png"})
	_, err := waitFor(t, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailure)
	assert.Equal(t, err, f.Err())

	img, ok := f.Peek()
	assert.False(t, ok)
	assert.Nil(t, img)
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("just some words, not pixels"), 0o600))
	pdf := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), 0o600))

	tests := []struct {
		name string
		src  Source
	}{
		{"missing file", Source{Path: filepath.Join(dir, "nope.png")}},
		{"not an image", Source{Path: text}},
		{"unsupported type", Source{Path: pdf}},
		{"bad scheme", Source{URL: "ftp://example.com/a.png"}},
		{"malformed data uri", Source{URL: "data:image/png;base64"}},
		{"empty", Source{}},
	}
	l := NewLoader()
	defer l.Close()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := waitFor(t, l.Load(tt.src))
			assert.ErrorIs(t, err, ErrLoadFailure)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.src, le.Source)
		})
	}
}

func TestLoadMaxBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 64, 64, color.White), 0o600))

	l := NewLoader(WithMaxBytes(16))
	defer l.Close()

	_, err := waitFor(t, l.Load(Source{Path: path}))
	assert.ErrorIs(t, err, ErrLoadFailure)
}

func TestLookupStartsLoad(t *testing.T) {
	release := make(chan struct{})
	data := pngBytes(t, 3, 3, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	defer l.Close()

	payload := &layer.Image{URL: srv.URL + "/slow.png"}
	img, ok := l.Lookup(payload)
	assert.False(t, ok)
	assert.Nil(t, img)
	assert.Equal(t, 1, l.Len())

	close(release)
	_, err := waitFor(t, l.Load(SourceOf(payload)))
	require.NoError(t, err)

	img, ok = l.Lookup(payload)
	require.True(t, ok)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, ok = l.Lookup(&layer.Image{})
	assert.False(t, ok)
}

func TestRetainCancelsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	defer l.Close()

	keep := Source{URL: srv.URL + "/keep.png"}
	drop := Source{URL: srv.URL + "/drop.png"}
	l.Load(keep)
	f := l.Load(drop)

	l.Retain([]Source{keep})
	assert.Equal(t, 1, l.Len())

	_, err := waitFor(t, f)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotSame(t, f, l.Load(drop))
}

func TestForgetAllowsRetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.png")
	src := Source{Path: path}

	l := NewLoader()
	defer l.Close()

	_, err := waitFor(t, l.Load(src))
	require.Error(t, err)

	// Failures are cached until forgotten.
	require.NoError(t, os.WriteFile(path, pngBytes(t, 1, 1, color.White), 0o600))
	_, err = waitFor(t, l.Load(src))
	require.Error(t, err)

	l.Forget(src)
	_, err = waitFor(t, l.Load(src))
	assert.NoError(t, err)
}

func TestLoadAfterClose(t *testing.T) {
	l := NewLoader()
	require.NoError(t, l.Close())

	_, err := waitFor(t, l.Load(Source{Path: "x.png"}))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, err, ErrLoadFailure)
}

func TestWaitDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Load(Source{URL: srv.URL}).Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeDataURIPlain(t *testing.T) {
	data, err := decodeDataURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "a.png", Source{Path: "a.png"}.String())
	assert.Equal(t, "http://x/b.png", Source{Path: "a.png", URL: "http://x/b.png"}.String())
	long := "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, 64))
	assert.Len(t, Source{URL: long}.String(), 35)
	assert.Equal(t, "url:u", Source{URL: "u"}.Key())
	assert.Equal(t, "path:p", Source{Path: "p"}.Key())
}
