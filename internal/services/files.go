package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/groupchat/groupchat/internal/models"
	"github.com/groupchat/groupchat/internal/storage"
	"github.com/groupchat/groupchat/pkg/logger"
	"gorm.io/gorm"
)

const defaultURLExpiry = time.Hour

type FileService struct {
	DB        *gorm.DB
	Blobs     storage.BlobStore
	URLExpiry time.Duration
	Notifier  Notifier
}

func NewFileService(db *gorm.DB, store storage.BlobStore, urlExpiry time.Duration, notifier Notifier) *FileService {
	if urlExpiry <= 0 {
		urlExpiry = defaultURLExpiry
	}
	return &FileService{DB: db, Blobs: store, URLExpiry: urlExpiry, Notifier: notifier}
}

func objectKey(id uuid.UUID) string {
	return "blobs/" + id.String()
}

func detectContentType(data []byte, contentType string) string {
	if contentType == "" || contentType == "application/octet-stream" {
		return mimetype.Detect(data).String()
	}
	return contentType
}

// Store writes data to the blob backend and records it. The returned blob id is the file reference
// messages carry.
func (s *FileService) Store(ctx context.Context, data []byte, contentType string) (*models.Blob, error) {
	blob := &models.Blob{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		ContentType: detectContentType(data, contentType),
		Size:        int64(len(data)),
	}
	blob.StoragePath = objectKey(blob.ID)

	if err := s.Blobs.Upload(ctx, blob.StoragePath, bytes.NewReader(data), blob.Size, blob.ContentType); err != nil {
		logger.Error("blob_upload_failed", err, map[string]interface{}{
			"blob_id": blob.ID.String(),
			"size":    blob.Size,
		})
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Create(blob).Error; err != nil {
		_ = s.Blobs.Delete(ctx, blob.StoragePath)
		logger.Error("blob_record_failed", err, map[string]interface{}{
			"blob_id": blob.ID.String(),
		})
		return nil, err
	}

	logger.Info("blob_stored", map[string]interface{}{
		"blob_id":      blob.ID.String(),
		"content_type": blob.ContentType,
		"size":         blob.Size,
	})

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, TableBlobs)
	}
	return blob, nil
}

func (s *FileService) lookup(ctx context.Context, ref string) (*models.Blob, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, ErrBlobNotFound
	}

	var blob models.Blob
	if err := s.DB.WithContext(ctx).First(&blob, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return &blob, nil
}

// URL returns a transient address for the blob referenced by ref.
func (s *FileService) URL(ctx context.Context, ref string) (string, error) {
	blob, err := s.lookup(ctx, ref)
	if err != nil {
		return "", err
	}
	return s.Blobs.URL(ctx, blob.StoragePath, s.URLExpiry)
}

func (s *FileService) Open(ctx context.Context, ref string) (io.ReadCloser, *models.Blob, error) {
	blob, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	reader, _, err := s.Blobs.Download(ctx, blob.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrBlobNotFound
		}
		return nil, nil, err
	}
	return reader, blob, nil
}

func (s *FileService) Delete(ctx context.Context, blob *models.Blob) error {
	if err := s.Blobs.Delete(ctx, blob.StoragePath); err != nil {
		logger.Error("blob_delete_failed", err, map[string]interface{}{
			"blob_id": blob.ID.String(),
		})
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Blob{}, "id = ?", blob.ID).Error; err != nil {
		return err
	}

	logger.Info("blob_deleted", map[string]interface{}{
		"blob_id": blob.ID.String(),
	})
	return nil
}
