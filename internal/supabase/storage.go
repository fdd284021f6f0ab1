package supabase

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"

	"media-market/internal/backend"
)

// Storage writes blobs to Supabase Storage buckets.
type Storage struct {
	c *Client
}

var _ backend.ObjectStorage = (*Storage)(nil)

func (c *Client) Storage() *Storage {
	return &Storage{c: c}
}

func (s *Storage) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) error {
	if err := alive(ctx); err != nil {
		return err
	}
	upsert := false
	_, err := s.c.sdk.Storage.UploadFile(bucket, path, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

func (s *Storage) PublicURL(bucket, path string) string {
	return s.c.sdk.Storage.GetPublicUrl(bucket, path).SignedURL
}
