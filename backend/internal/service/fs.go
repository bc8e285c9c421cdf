package service

import (
	"io"
	"time"
)

type MediaStorage interface {
	// Save stores data under a freshly generated random name, independent of
	// any user supplied name. It returns the full path of the stored file.
	Save(data io.Reader) (string, error)

	// Write creates or atomically replaces the file at filePath.
	Write(filePath string, data io.Reader) error

	// Read opens a file for reading given its full path.
	Read(filePath string) (io.ReadCloser, error)

	// DeleteFile removes a single file.
	DeleteFile(filePath string) error
}

// GCMediaStorage defines the filesystem operations needed for garbage collection.
type GCMediaStorage interface {
	WalkFiles() ([]string, error)
	GetFileModTime(filePath string) (time.Time, error)
	DeleteFile(filePath string) error
}
