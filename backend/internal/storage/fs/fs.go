package fs

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/itchan-dev/filesmanager/backend/internal/service"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

const tmpPrefix = ".tmp-"

type Storage struct {
	rootPath string
}

// Ensure Storage struct implements the interfaces at compile time.
var (
	_ service.MediaStorage   = (*Storage)(nil)
	_ service.GCMediaStorage = (*Storage)(nil)
)

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// Save writes data to <root>/<random id>.
func (s *Storage) Save(data io.Reader) (string, error) {
	fullPath := filepath.Join(s.rootPath, utils.NewToken())
	if err := s.Write(fullPath, data); err != nil {
		return "", err
	}
	return fullPath, nil
}

// Write stores data through a temp file in the same directory and renames it
// over filePath, so readers see either the old or the new content.
func (s *Storage) Write(filePath string, data io.Reader) error {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpPath) // Best effort
		return fmt.Errorf("failed to copy file data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush file data: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Read opens a file for reading from the storage.
func (s *Storage) Read(filePath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("media %s: %w", filepath.Base(fullPath), errors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// DeleteFile removes a single file from storage.
func (s *Storage) DeleteFile(filePath string) error {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// WalkFiles lists full paths of all stored files, originals and variants.
// Temp files of writes in progress are skipped.
func (s *Storage) WalkFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.rootPath, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tmpPrefix) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk storage: %w", err)
	}
	return paths, nil
}

func (s *Storage) GetFileModTime(filePath string) (time.Time, error) {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// resolve accepts absolute paths under the root or paths relative to it and
// rejects anything that escapes the root.
func (s *Storage) resolve(filePath string) (string, error) {
	fullPath := filepath.Clean(filePath)
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(s.rootPath, fullPath)
	}
	rel, err := filepath.Rel(s.rootPath, fullPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside of storage root", filePath)
	}
	return fullPath, nil
}
