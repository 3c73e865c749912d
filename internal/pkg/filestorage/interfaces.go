package filestorage

import (
	"errors"
	"mime/multipart"
)

// ErrUnsupportedFile is returned for uploads that fail the size or type rules
var ErrUnsupportedFile = errors.New("unsupported file")

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath and returns its public URL
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored file. Missing files are not an error.
	DeleteFile(fileURL string) error
}
