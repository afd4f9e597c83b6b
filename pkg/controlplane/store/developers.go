package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// ============================================
// DEVELOPER OPERATIONS
// ============================================

var developerProfileFields = []string{"Firstname", "Lastname", "Email"}

func (s *GORMStore) CheckDeveloperPassword(ctx context.Context, username, password string) error {
	dev, err := s.GetDeveloper(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrDeveloperNotFound) {
			return models.ErrInvalidCredentials
		}
		return err
	}
	if !VerifyPassword(password, dev.PasswordHash) {
		return models.ErrInvalidCredentials
	}
	return nil
}

func (s *GORMStore) GetDeveloper(ctx context.Context, username string) (*models.Developer, error) {
	return getWhere[models.Developer](s.db, ctx, models.ErrDeveloperNotFound,
		"username = ?", models.NormalizeUsername(username))
}

func (s *GORMStore) GetDevelopers(ctx context.Context) ([]*models.Developer, error) {
	return listWhere[models.Developer](s.db, ctx, "username ASC", "")
}

func (s *GORMStore) CreateDeveloper(ctx context.Context, dev *models.Developer, password string) error {
	dev.Username = models.NormalizeUsername(dev.Username)
	if dev.Username == "" {
		return fmt.Errorf("username is required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	dev.PasswordHash = hash
	dev.CreatedAt = time.Now()

	return create(s.db, ctx, dev, models.ErrDuplicateDeveloper)
}

func (s *GORMStore) UpdateDeveloper(ctx context.Context, dev *models.Developer) error {
	fields := append([]string{"IsAdmin"}, developerProfileFields...)
	return updateWhere[models.Developer](s.db, ctx, dev, models.ErrDeveloperNotFound, fields,
		"username = ?", models.NormalizeUsername(dev.Username))
}

func (s *GORMStore) UpdateDeveloperNoAdmin(ctx context.Context, dev *models.Developer) error {
	return updateWhere[models.Developer](s.db, ctx, dev, models.ErrDeveloperNotFound, developerProfileFields,
		"username = ?", models.NormalizeUsername(dev.Username))
}

func (s *GORMStore) UpdateDeveloperPassword(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return updateWhere[models.Developer](s.db, ctx, map[string]any{"password_hash": hash},
		models.ErrDeveloperNotFound, []string{"password_hash"},
		"username = ?", models.NormalizeUsername(username))
}

func (s *GORMStore) DeleteDeveloper(ctx context.Context, username string) error {
	return deleteWhere[models.Developer](s.db, ctx, models.ErrDeveloperNotFound,
		"username = ?", models.NormalizeUsername(username))
}

// ============================================
// ADMIN INITIALIZATION
// ============================================

func (s *GORMStore) EnsureAdminDeveloper(ctx context.Context, username, password string) (string, error) {
	_, err := s.GetDeveloper(ctx, username)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, models.ErrDeveloperNotFound) {
		return "", err
	}

	if password == "" {
		password, err = GenerateRandomPassword()
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
	}

	admin := &models.Developer{Username: username, IsAdmin: true}
	if err := s.CreateDeveloper(ctx, admin, password); err != nil {
		return "", fmt.Errorf("failed to create admin developer: %w", err)
	}
	return password, nil
}
