package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/pkg/storage"
	"gorm.io/gorm"
)

// Accepted attachment types, keyed by extension
var attachmentKinds = map[string]domain.AttachmentKind{
	".jpg":  domain.AttachmentImage,
	".jpeg": domain.AttachmentImage,
	".png":  domain.AttachmentImage,
	".gif":  domain.AttachmentImage,
	".webp": domain.AttachmentImage,
	".pdf":  domain.AttachmentFile,
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// UploadService validates and stores message attachments
type UploadService interface {
	Upload(ctx context.Context, channelID uint64, file *multipart.FileHeader) (*domain.AttachmentUploadResponse, error)
}

type uploadService struct {
	channelRepo repository.ChannelRepository
	store       *storage.S3Client
}

// NewUploadService creates a new UploadService
func NewUploadService(channelRepo repository.ChannelRepository, store *storage.S3Client) UploadService {
	return &uploadService{channelRepo: channelRepo, store: store}
}

// Upload stores an attachment and returns its public URL and media
// kind. Only small images and PDFs are accepted.
func (s *uploadService) Upload(ctx context.Context, channelID uint64, file *multipart.FileHeader) (*domain.AttachmentUploadResponse, error) {
	if s.store == nil {
		return nil, common.ErrInvalidInput
	}

	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrChannelNotFound
		}
		return nil, err
	}

	if file.Size > domain.MaxAttachmentSize {
		return nil, common.ErrInvalidInput
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	kind, ok := attachmentKinds[ext]
	if !ok {
		return nil, common.ErrInvalidInput
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := storage.GenerateKey(fmt.Sprintf("channels/%d", channelID), file.Filename)
	result, err := s.store.Upload(ctx, key, src, contentTypes[ext], file.Size)
	if err != nil {
		return nil, err
	}

	return &domain.AttachmentUploadResponse{
		URL:            result.URL,
		AttachmentKind: kind,
		Size:           file.Size,
	}, nil
}
