package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for http.DetectContentType.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	return typedFileHeader(t, name, "application/octet-stream", content)
}

func typedFileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestPutFile(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root, "/static")
	ctx := context.Background()

	obj, err := PutFile(ctx, store, "banners", fileHeader(t, "hero.png", pngHeader), UploadOptions{ImagesOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "banners", obj.Dir)
	assert.Equal(t, ".png", filepath.Ext(obj.Name))
	assert.Equal(t, "image/png", obj.ContentType)

	stored, err := os.ReadFile(filepath.Join(root, "banners", obj.Name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	_, err = PutFile(ctx, store, "banners", fileHeader(t, "notes", []byte("plain words")), UploadOptions{ImagesOnly: true})
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = PutFile(ctx, store, "banners", fileHeader(t, "big.png", pngHeader), UploadOptions{MaxBytes: 4})
	assert.ErrorIs(t, err, ErrTooLarge)

	require.NoError(t, DeleteURL(ctx, store, obj.URL))
	require.NoError(t, DeleteURL(ctx, store, obj.URL), "already deleted")
	require.NoError(t, DeleteURL(ctx, store, "https://elsewhere.example/x.png"))
	require.NoError(t, DeleteURL(ctx, store, ""))
}

func TestPutFileSniffsImages(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root, "/static")
	ctx := context.Background()

	page := []byte("<html><script>alert(1)</script></html>")
	_, err := PutFile(ctx, store, "images", typedFileHeader(t, "evil.html", "image/png", page), UploadOptions{ImagesOnly: true})
	assert.ErrorIs(t, err, ErrNotImage, "declared type is not trusted")

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)
	_, err = PutFile(ctx, store, "images", typedFileHeader(t, "logo.svg", "image/svg+xml", svg), UploadOptions{ImagesOnly: true})
	assert.ErrorIs(t, err, ErrNotImage)

	obj, err := PutFile(ctx, store, "images", typedFileHeader(t, "photo.html", "text/html", pngHeader), UploadOptions{ImagesOnly: true})
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(obj.Name), "extension follows the sniffed type")
	assert.Equal(t, "image/png", obj.ContentType)

	entries, err := os.ReadDir(filepath.Join(root, "images"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
