package binarystore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ycd "github.com/rubpy/ycd-go"
)

//////////////////////////////////////////////////

// FS writes every payload to <dir>/<id>/<file name>.
type FS struct {
	dir string
}

func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &FS{dir: abs}, nil
}

func (s *FS) Dir() string {
	return s.dir
}

func (s *FS) Store(ctx context.Context, id string, bin *ycd.BinaryData) (ref string, err error) {
	if err = checkInput(id, bin); err != nil {
		return
	}

	if ctx != nil {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	p := filepath.Join(s.dir, filepath.FromSlash(objectKey("", id, bin.FileName)))
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll: %w", err)
	}

	if err = os.WriteFile(p, bin.Data, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile: %w", err)
	}

	return p, nil
}
