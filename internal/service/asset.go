package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/storage"
)

var (
	ErrAssetIDRequired = errors.New("asset id is required")
	ErrAssetNotFound   = errors.New("content asset not found")
	ErrReaderNil       = errors.New("reader is nil")
)

// AssetDownload is a presigned download link for a stored asset.
type AssetDownload struct {
	Asset *model.ContentAsset `json:"asset"`
	URL   string              `json:"url"`
}

// AssetService defines the use cases for HITL content assets: the creative
// files reviewers look at alongside an approval request.
type AssetService interface {
	// Upload streams the content to object storage, saves metadata to DB, and
	// rolls back storage if the DB save fails.
	// - originalFilename is used only to extract extension; the stored name is UUID + extension.
	Upload(ctx context.Context, tenantID string, r io.Reader, originalFilename, contentType string, size int64) (*model.ContentAsset, error)

	// Download returns asset metadata with a time-limited presigned URL.
	Download(ctx context.Context, id string) (*AssetDownload, error)

	// Delete removes an asset from both storage and repository.
	Delete(ctx context.Context, id string) error
}

type assetService struct {
	store storage.Storage
	repo  repository.AssetRepository
}

// NewAssetService constructs a new AssetService.
func NewAssetService(store storage.Storage, repo repository.AssetRepository) AssetService {
	return &assetService{store: store, repo: repo}
}

func (s *assetService) Upload(ctx context.Context, tenantID string, r io.Reader, originalFilename, contentType string, size int64) (*model.ContentAsset, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	ext := filepath.Ext(originalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("assets", tenantID, genName))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"tenant-id":         tenantID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	asset := &model.ContentAsset{
		TenantID:    tenantID,
		Filename:    genName,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: objInfo.ContentType,
	}
	stored, err := s.repo.Create(ctx, asset)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *assetService) Download(ctx context.Context, id string) (*AssetDownload, error) {
	if id == "" {
		return nil, ErrAssetIDRequired
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	url, err := s.store.PresignGet(ctx, asset.StoragePath, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("presign asset: %w", err)
	}
	return &AssetDownload{Asset: asset, URL: url}, nil
}

// Delete removes an asset from storage, then deletes its record.
func (s *assetService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrAssetIDRequired
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAssetNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep the DB row so the object
	// reference is not lost.
	if err := s.store.Delete(ctx, asset.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
