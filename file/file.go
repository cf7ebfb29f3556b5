// Package file implements [lokalku.KeyValue] on top of a directory, one
// file per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lokalku/lokalku"
)

var _ lokalku.KeyValue = (*KeyValue)(nil)

// KeyValue stores each value in <dir>/<key>.json. Writes go through a temp
// file and a rename so a crash never leaves a half-written snapshot.
type KeyValue struct {
	dir string
}

// New returns a KeyValue rooted at dir. The directory is created lazily on
// the first Set.
func New(dir string) *KeyValue {
	return &KeyValue{dir: dir}
}

const ext = ".json"

func (kv *KeyValue) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." {
		return "", fmt.Errorf("file: invalid key %q: %w", key, lokalku.ErrValidation)
	}
	return filepath.Join(kv.dir, url.PathEscape(key)+ext), nil
}

func (kv *KeyValue) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := kv.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", lokalku.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("file: read %s: %w", key, err)
	}
	return string(data), nil
}

func (kv *KeyValue) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := kv.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(kv.dir, 0o700); err != nil {
		return fmt.Errorf("file: create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("file: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("file: rename temp file: %w", err)
	}
	return nil
}

func (kv *KeyValue) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := kv.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file: remove %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key in ascending order. A missing directory
// holds no keys.
func (kv *KeyValue) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(kv.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: list keys: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ext)
		if !ok || e.IsDir() {
			continue
		}
		key, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
