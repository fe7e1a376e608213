package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"kvert/account-api/internal/storage"

	"github.com/disintegration/imaging"
)

// Every avatar gets normalized to this square size
const avatarSize = 250

type AvatarService struct {
	Store storage.Storage
}

func NewAvatarService(s storage.Storage) *AvatarService {
	return &AvatarService{Store: s}
}

// Process normalizes a staged upload to 250x250, rewrites it in place in
// the staging area and relocates it into permanent storage under a
// timestamped name so two users uploading "me.png" never collide.
// Returns the permanent location for the user record
func (s *AvatarService) Process(ctx context.Context, stagedPath, originalName string) (string, error) {
	img, err := imaging.Open(stagedPath)
	if err != nil {
		return "", fmt.Errorf("failed to decode avatar image, %w", err)
	}

	resized := imaging.Resize(img, avatarSize, avatarSize, imaging.Lanczos)

	if err := imaging.Save(resized, stagedPath); err != nil {
		return "", fmt.Errorf("failed to write resized avatar, %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(originalName))

	loc, err := s.Store.Store(ctx, stagedPath, name)
	if err != nil {
		return "", err
	}

	return loc, nil
}
