package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxIconSize     = 2 * 1024 * 1024 // 2MB
	MinIconSize     = 16
	MaxIconPixels   = 4096 // per side, checked before decoding
	IconDimension   = 128
	IconURLExpiry   = 15 * time.Minute
	iconContentType = "image/png"
)

var (
	ErrIconTooLarge             = errors.New("file too large. Maximum size is 2MB")
	ErrInvalidIconFormat        = errors.New("invalid format. Supported: JPEG, PNG, GIF")
	ErrIconTooSmall             = errors.New("image too small. Minimum 16x16 pixels")
	ErrIconDimensionsTooLarge   = errors.New("image dimensions too large. Maximum 4096x4096 pixels")
	ErrInvalidIconData          = errors.New("invalid image data")
	ErrIconNotFound             = errors.New("icon not found")
	ErrIconStorageNotConfigured = errors.New("icon storage not configured")
)

// AllowedIconExtensions lists the accepted upload extensions
var AllowedIconExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Icon is an uploaded custom app icon. URL is stable and redirects to a
// short-lived presigned object URL.
type Icon struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// IconService normalizes and stores custom app icons
type IconService struct {
	storage  storage.IconRepository
	userRepo domain.UserRepository
	baseURL  string
}

// NewIconService creates a new IconService. storage may be nil when no
// bucket is configured; uploads are then rejected.
func NewIconService(storage storage.IconRepository, userRepo domain.UserRepository, baseURL string) *IconService {
	return &IconService{
		storage:  storage,
		userRepo: userRepo,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *IconService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Upload validates the image, crops it to a square PNG and stores it
func (s *IconService) Upload(ctx context.Context, auth0ID string, data []byte, filename string) (*Icon, error) {
	if !s.IsEnabled() {
		return nil, ErrIconStorageNotConfigured
	}

	png, err := NormalizeIcon(data, filename)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}

	iconID := uuid.New()
	if err := s.storage.Upload(ctx, iconPath(user.ID, iconID), bytes.NewReader(png), iconContentType, int64(len(png))); err != nil {
		return nil, fmt.Errorf("failed to upload icon: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("icon_id", iconID.String()).
		Msg("Icon uploaded")

	return &Icon{
		ID:  iconID.String(),
		URL: fmt.Sprintf("%s/api/v1/icons/%s/%s", s.baseURL, user.ID, iconID),
	}, nil
}

// PresignedURL returns a temporary URL for an icon. Icons are referenced
// from public desktops, so no caller check is done.
func (s *IconService) PresignedURL(ctx context.Context, userID, iconID string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrIconStorageNotConfigured
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", ErrIconNotFound
	}
	iid, err := uuid.Parse(iconID)
	if err != nil {
		return "", ErrIconNotFound
	}

	path := iconPath(uid, iid)
	exists, err := s.storage.Exists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrIconNotFound
	}

	return s.storage.GeneratePresignedURL(ctx, path, IconURLExpiry)
}

// Delete removes one of the caller's icons
func (s *IconService) Delete(ctx context.Context, auth0ID, iconID string) error {
	if !s.IsEnabled() {
		return ErrIconStorageNotConfigured
	}

	iid, err := uuid.Parse(iconID)
	if err != nil {
		return ErrIconNotFound
	}

	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return err
	}

	path := iconPath(user.ID, iid)
	exists, err := s.storage.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return ErrIconNotFound
	}
	return s.storage.Delete(ctx, path)
}

// NormalizeIcon decodes an uploaded image and returns it as a
// IconDimension x IconDimension PNG, center-cropped
func NormalizeIcon(data []byte, filename string) ([]byte, error) {
	if len(data) > MaxIconSize {
		return nil, ErrIconTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedIconExtensions[ext] {
		return nil, ErrInvalidIconFormat
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidIconData
	}
	if cfg.Width > MaxIconPixels || cfg.Height > MaxIconPixels {
		return nil, ErrIconDimensionsTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidIconData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinIconSize || bounds.Dy() < MinIconSize {
		return nil, ErrIconTooSmall
	}

	square := imaging.Fill(img, IconDimension, IconDimension, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

func iconPath(userID, iconID uuid.UUID) string {
	return fmt.Sprintf("icons/%s/%s.png", userID, iconID)
}
