package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
)

var (
	ErrTooLarge = errors.New("file too large")
	ErrNotImage = errors.New("file is not an image")
)

// UploadOptions limits what PutFile accepts.
type UploadOptions struct {
	MaxBytes   int64
	ImagesOnly bool
}

// PutFile stores a multipart upload under dir with a generated name.
func PutFile(ctx context.Context, s Storage, dir string, fh *multipart.FileHeader, opts UploadOptions) (*Object, error) {
	if opts.MaxBytes > 0 && fh.Size > opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, fh.Size, opts.MaxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	name := BuildFileName(fh.Filename)
	var contentType string
	if opts.ImagesOnly {
		// The client header and file name are ignored; the stored name takes
		// the extension of the sniffed type.
		ct, ext, ok := SniffImage(head)
		if !ok {
			return nil, ErrNotImage
		}
		contentType = ct
		name = strings.TrimSuffix(name, path.Ext(name)) + ext
	} else {
		contentType = DetectContentType(fh.Filename, head, fh.Header.Get("Content-Type"))
	}

	body := io.MultiReader(bytes.NewReader(head), f)
	return s.Put(ctx, dir, name, body, fh.Size, contentType)
}

// DeleteURL removes the object behind a URL produced by s. URLs that s did
// not produce and objects already gone are ignored.
func DeleteURL(ctx context.Context, s Storage, url string) error {
	if url == "" {
		return nil
	}
	dir, name, ok := s.Resolve(url)
	if !ok {
		return nil
	}
	if err := s.Delete(ctx, dir, name); err != nil && !errors.Is(err, ErrNotExist) {
		return err
	}
	return nil
}

// IsUploadError reports whether err was caused by the uploaded file itself.
func IsUploadError(err error) bool {
	return errors.Is(err, ErrTooLarge) || errors.Is(err, ErrNotImage) || errors.Is(err, ErrInvalidKey)
}
