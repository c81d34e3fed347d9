package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jobboard/cms/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFileName(t *testing.T) {
	name := BuildFileName("Logo.PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, 22)
	assert.NotEqual(t, name, BuildFileName("Logo.PNG"))
	assert.True(t, strings.HasSuffix(BuildFileName("noext"), ".dat"))
	assert.True(t, strings.HasSuffix(BuildFileName("x.p$g"), ".dat"))
}

func TestSafeSegments(t *testing.T) {
	assert.Equal(t, "images", NormalizeDir(" Images "))
	assert.Equal(t, "", NormalizeDir("../etc"))
	assert.Equal(t, "a.png", SafeName("a.png"))
	assert.Equal(t, "passwd", SafeName("../../etc/passwd"))
	assert.Equal(t, "", SafeName(".."))
	assert.Equal(t, "", SafeName("a b.png"))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", DetectContentType("a.png", nil, ""))
	assert.Equal(t, "image/gif", DetectContentType("blob", []byte("GIF89a"), "application/octet-stream"))
	assert.Equal(t, "image/webp", DetectContentType("a.png", nil, "image/webp"))
}

func TestLocalPutDeleteResolve(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, "static")
	ctx := context.Background()

	obj, err := l.Put(ctx, "logo", "abc.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/static/logo/abc.png", obj.URL)
	assert.EqualValues(t, 9, obj.Size)

	data, err := os.ReadFile(filepath.Join(root, "logo", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	dir, name, ok := l.Resolve(obj.URL)
	require.True(t, ok)
	assert.Equal(t, "logo", dir)
	assert.Equal(t, "abc.png", name)

	_, _, ok = l.Resolve("https://elsewhere.example.com/logo/abc.png")
	assert.False(t, ok)

	require.NoError(t, l.Delete(ctx, dir, name))
	assert.ErrorIs(t, l.Delete(ctx, dir, name), ErrNotExist)

	_, err = l.Put(ctx, "../x", "a.png", strings.NewReader(""), 0, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestS3URLs(t *testing.T) {
	s, err := NewS3(config.S3Config{Bucket: "uploads", Region: "eu-west-1", Endpoint: "minio.local:9000", Prefix: "cms"})
	require.NoError(t, err)
	assert.Equal(t, "cms/banners/a.jpg", s.key("banners", "a.jpg"))

	dir, name, ok := s.Resolve("https://minio.local:9000/uploads/cms/banners/a.jpg")
	require.True(t, ok)
	assert.Equal(t, "banners", dir)
	assert.Equal(t, "a.jpg", name)

	_, err = NewS3(config.S3Config{})
	assert.Error(t, err)
}
