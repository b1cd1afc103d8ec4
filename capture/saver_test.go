package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	s, err := NewDirSaver(dir)
	require.NoError(t, err)

	loc, err := s.Save(context.Background(), "a.jpg", []byte("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")

	require.NoError(t, s.Remove(loc))
	assert.NoFileExists(t, loc)
	assert.NoError(t, s.Remove(loc))
	assert.Error(t, s.Remove("/etc/passwd"))
}

func TestDirSaverRejectsNames(t *testing.T) {
	s, err := NewDirSaver(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../x.jpg", "sub/x.jpg", ".hidden"} {
		_, err := s.Save(context.Background(), name, []byte("x"))
		assert.Error(t, err, name)
	}

	_, err = NewDirSaver("")
	assert.Error(t, err)
}

func TestDirSaverCanceled(t *testing.T) {
	s, err := NewDirSaver(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, "a.jpg", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQualityScale(t *testing.T) {
	assert.Equal(t, 0.0, qualityScale(-5))
	assert.Equal(t, 0.85, qualityScale(85))
	assert.Equal(t, 1.0, qualityScale(250))
}

func TestEncodeQualityAffectsSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), uint8((x ^ y) * 4), 255})
		}
	}
	low, err := encode(EncodeJPEG, img, 5)
	require.NoError(t, err)
	high, err := encode(EncodeJPEG, img, 100)
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))
	assert.True(t, bytes.HasPrefix(high, []byte{0xff, 0xd8}))

	_, err = encode(func(w io.Writer, _ image.Image, _ float64) error { return nil }, img, 50)
	assert.ErrorIs(t, err, ErrEncodeFailure)
}

func TestParseSelector(t *testing.T) {
	for in, want := range map[string]Selector{"": OutputLocation, "BASE64": OutputBase64, "both": OutputBoth, "location": OutputLocation} {
		got, err := ParseSelector(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSelector("fax")
	assert.Error(t, err)
}
