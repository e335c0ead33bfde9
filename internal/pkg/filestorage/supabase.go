package filestorage

import (
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"

	"github.com/edvios/backend/internal/pkg/logger"
)

// SupabaseStorage stores objects in a Supabase Storage bucket
type SupabaseStorage struct {
	client  *storage.Client
	baseURL string
	bucket  string
}

// NewSupabaseStorage creates a client for bucket using the service role key
func NewSupabaseStorage(supabaseURL, serviceRoleKey, bucket string) *SupabaseStorage {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStorage{
		client:  storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		baseURL: baseURL,
		bucket:  bucket,
	}
}

// SaveFileWithPath uploads to <bucket>/<subPath>/<uuid><ext>
func (s *SupabaseStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := path.Join(sanitizeSubPath(subPath), uuid.New().String()+strings.ToLower(filepath.Ext(fileHeader.Filename)))
	contentType := detectMimeType(fileHeader)

	if _, err := s.client.UploadFile(s.bucket, key, file, storage.FileOptions{ContentType: &contentType}); err != nil {
		logger.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("Failed to upload to Supabase Storage")
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &StoredFile{
		Key:      key,
		URL:      s.PublicURL(key),
		Filename: fileHeader.Filename,
		FileSize: fileHeader.Size,
		MimeType: contentType,
	}, nil
}

// DeleteFile removes an object from the bucket
func (s *SupabaseStorage) DeleteFile(key string) error {
	if key == "" {
		return nil
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		logger.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("Failed to delete from Supabase Storage")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// PublicURL is the public object URL of key
func (s *SupabaseStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
