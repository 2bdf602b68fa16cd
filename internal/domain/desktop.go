package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Background is the wallpaper choice of a desktop
type Background string

const (
	BackgroundDefault  Background = "DEFAULT"
	BackgroundWarm     Background = "WARM"
	BackgroundGreen    Background = "GREEN"
	BackgroundBlack    Background = "BLACK"
	BackgroundSunset   Background = "SUNSET"
	BackgroundStation  Background = "STATION"
	BackgroundOcean    Background = "OCEAN"
	BackgroundSakura   Background = "SAKURA"
	BackgroundMountain Background = "MOUNTAIN"
)

// Backgrounds lists the fixed palette in display order
var Backgrounds = []Background{
	BackgroundDefault,
	BackgroundWarm,
	BackgroundGreen,
	BackgroundBlack,
	BackgroundSunset,
	BackgroundStation,
	BackgroundOcean,
	BackgroundSakura,
	BackgroundMountain,
}

// IsValid reports whether b is part of the palette
func (b Background) IsValid() bool {
	for _, candidate := range Backgrounds {
		if b == candidate {
			return true
		}
	}
	return false
}

// ParseBackground converts a raw value into a Background
func ParseBackground(s string) (Background, error) {
	b := Background(s)
	if !b.IsValid() {
		return "", ErrInvalidBackground
	}
	return b, nil
}

// Desktop is the persisted desktop of a single user.
// RawState holds the state column as stored; it is re-validated with
// DecodeState before being handed out.
type Desktop struct {
	ID         int32      `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	OSName     string     `json:"osName"`
	RawState   []byte     `json:"-"`
	IsPublic   bool       `json:"isPublic"`
	Background Background `json:"background"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// DesktopRepository defines the interface for desktop persistence operations.
// Every update replaces the whole column; there is no version check.
type DesktopRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Desktop, error)
	GetByOSName(ctx context.Context, osName string) (*Desktop, error)
	UpdateState(ctx context.Context, userID uuid.UUID, state []byte) error
	UpdateVisibility(ctx context.Context, userID uuid.UUID, isPublic bool) error
	UpdateBackground(ctx context.Context, userID uuid.UUID, background Background) error
	// ListAfter returns up to limit desktops with an ID greater than afterID, ordered by ID
	ListAfter(ctx context.Context, afterID int32, limit int) ([]*Desktop, error)
}
