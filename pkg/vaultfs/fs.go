package vaultfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideVault is returned when a path escapes the vault root.
var ErrOutsideVault = errors.New("vaultfs: path escapes vault root")

// FileSystem is the note-access collaborator contract. All paths are
// vault-relative slash paths.
type FileSystem interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path string, content string) error
	Remove(ctx context.Context, path string) error
	List(ctx context.Context, dir string) ([]string, error)
	IsFile(ctx context.Context, path string) (bool, error)
	IsDirectory(ctx context.Context, path string) (bool, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// Local implements FileSystem over a directory on disk.
type Local struct {
	root string
}

var _ FileSystem = &Local{}

func NewLocal(root string) *Local {
	return &Local{root: filepath.Clean(root)}
}

func (l *Local) resolve(path string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(path))
	full := filepath.Join(l.root, cleaned)
	if full != l.root && !strings.HasPrefix(full, l.root+string(filepath.Separator)) {
		return "", ErrOutsideVault
	}
	return full, nil
}

func (l *Local) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := l.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func (l *Local) Write(ctx context.Context, path string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (l *Local) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// List walks dir recursively and returns vault-relative paths of all
// regular files under it.
func (l *Local) List(ctx context.Context, dir string) ([]string, error) {
	full, err := l.resolve(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(full, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (e.g. .obsidian, .git) are not notes
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") && p != full {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return paths, nil
}

func (l *Local) IsFile(ctx context.Context, path string) (bool, error) {
	info, err := l.stat(ctx, path)
	if err != nil {
		return false, err
	}
	return info != nil && info.Mode().IsRegular(), nil
}

func (l *Local) IsDirectory(ctx context.Context, path string) (bool, error) {
	info, err := l.stat(ctx, path)
	if err != nil {
		return false, err
	}
	return info != nil && info.IsDir(), nil
}

func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	info, err := l.stat(ctx, path)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (l *Local) stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return info, nil
}
