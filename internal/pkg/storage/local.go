package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local writes files under root and serves them from urlPrefix.
type Local struct {
	root      string
	urlPrefix string
}

func NewLocal(root, urlPrefix string) *Local {
	return &Local{root: root, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

func (l *Local) Driver() string { return "local" }

func (l *Local) Root() string { return l.root }

func (l *Local) Put(ctx context.Context, dir, name string, body io.Reader, size int64, contentType string) (*Object, error) {
	if err := checkKey(dir, name); err != nil {
		return nil, err
	}
	target := filepath.Join(l.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	dst := filepath.Join(target, name)
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	written, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &Object{
		Dir:         dir,
		Name:        name,
		URL:         l.urlPrefix + "/" + dir + "/" + name,
		Size:        written,
		ContentType: contentType,
		Storage:     l.Driver(),
	}, nil
}

func (l *Local) Delete(ctx context.Context, dir, name string) error {
	if err := checkKey(dir, name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(l.root, dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}

func (l *Local) Resolve(url string) (string, string, bool) {
	rest, ok := strings.CutPrefix(url, l.urlPrefix+"/")
	if !ok {
		return "", "", false
	}
	dir, name, ok := strings.Cut(rest, "/")
	if !ok || checkKey(dir, name) != nil {
		return "", "", false
	}
	return dir, name, true
}
