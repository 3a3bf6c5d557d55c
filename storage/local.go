package storage

import (
	"context"
	"os"
	"path/filepath"
)

// Local grava os arquivos em disco. Usado em dev; BaseURL aponta para a rota
// estática que serve Dir.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) *Local {
	if dir == "" {
		dir = "uploads"
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080/uploads"
	}
	return &Local{Dir: dir, BaseURL: baseURL}
}

func (l *Local) Upload(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := obj.Key()
	path := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, obj.Data, 0o644); err != nil {
		return "", err
	}
	return joinURL(l.BaseURL, key), nil
}
