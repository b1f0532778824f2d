package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, key, bucket string) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", key, map[string]string{"apikey": key})

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// ExportPath is where a plan export for the startup is written:
// users/{user_id}/startups/{startup_id}/{filename}
func ExportPath(userID, startupID uuid.UUID, filename string) string {
	return fmt.Sprintf("users/%s/startups/%s/%s", userID.String(), startupID.String(), filename)
}

// UploadJSON stores data at storagePath, replacing any existing object, and
// returns its public URL.
func (s *StorageClient) UploadJSON(storagePath string, data []byte) (string, error) {
	contentType := "application/json"
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", storagePath, err)
	}

	return s.PublicURL(storagePath), nil
}

func (s *StorageClient) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}
