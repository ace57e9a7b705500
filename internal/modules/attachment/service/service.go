package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/policy"
	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/storage"
)

const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type AttachmentService interface {
	UploadCourseImage(ctx context.Context, user *entity.User, file *multipart.FileHeader) (string, error)
}

type attachmentService struct {
	imageStorage storage.ImageStorage
	logger       *slog.Logger
}

// NewAttachmentService accepts a nil imageStorage; uploads then fail as unavailable.
func NewAttachmentService(imageStorage storage.ImageStorage, logger *slog.Logger) AttachmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &attachmentService{imageStorage: imageStorage, logger: logger}
}

func (s *attachmentService) UploadCourseImage(ctx context.Context, user *entity.User, file *multipart.FileHeader) (string, error) {
	if err := policy.EnsureRole(user, entity.RoleCreator, entity.RoleAdmin); err != nil {
		return "", err
	}
	if s.imageStorage == nil {
		return "", fmt.Errorf("image uploads are not configured: %w", apperror.ErrUnavailable)
	}
	if file.Size > MaxImageSize {
		return "", fmt.Errorf("image must be at most 5 MB: %w", apperror.ErrInvalidInput)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read uploaded file: %w", apperror.ErrInvalidInput)
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return "", fmt.Errorf("unsupported image type %s: %w", contentType, apperror.ErrInvalidInput)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	url, err := s.imageStorage.UploadImage(ctx, src, file.Filename)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "course image uploaded", "user_id", user.ID, "url", url)
	return url, nil
}
