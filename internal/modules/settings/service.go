package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("setting not found")

// Service defines the app-settings key-value store.
type Service interface {
	// Get returns the value for a key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts a key.
	Set(ctx context.Context, key, value string) error
}

// Repository defines data access for app settings.
type Repository interface {
	Get(ctx context.Context, key string) (*AppSetting, error)
	Upsert(ctx context.Context, key, value string) error
}

type service struct{ repo Repository }

// NewService creates a new settings service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Get(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *service) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	return s.repo.Upsert(ctx, key, value)
}
