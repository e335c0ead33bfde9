package filestorage

import (
	"mime/multipart"
)

// StoredFile represents information about a stored file
type StoredFile struct {
	Key      string // Storage key, used for deletion
	URL      string // Public URL of the object
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // MIME type of the file
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath with a generated name
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error)

	// DeleteFile removes an object by key. Missing objects are not an error.
	DeleteFile(key string) error
}

func detectMimeType(fileHeader *multipart.FileHeader) string {
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
