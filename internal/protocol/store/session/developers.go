package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Developers own themselves; no store lookup is needed to resolve them.

func (s *Session) resolveUpdateDeveloper(_ context.Context, m *message.UpdateDeveloper) (*target, error) {
	return &target{owner: models.NormalizeUsername(m.Developer.Username)}, nil
}

func (s *Session) resolveRequestDeveloper(_ context.Context, m *message.RequestDeveloper) (*target, error) {
	return &target{owner: models.NormalizeUsername(m.Username)}, nil
}

func (s *Session) handleRequestDeveloperList(ctx context.Context, _ *message.RequestDeveloperList, _ *target) (message.Message, error) {
	devs, err := s.deps.Store.GetDevelopers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list developers: %w", err)
	}

	list := make([]message.Developer, 0, len(devs))
	for _, d := range devs {
		list = append(list, message.FromDeveloper(*d))
	}
	return &message.ResponseDeveloperList{
		AllowedToViewList: true,
		Message:           "Response developer list",
		DeveloperList:     list,
	}, nil
}

func (s *Session) handleCreateNewDeveloper(ctx context.Context, m *message.CreateNewDeveloper, _ *target) (message.Message, error) {
	dev := m.Developer.Model()
	if dev.Username == "" {
		return &message.ResponseDeveloperModification{Message: "Username must not be empty"}, nil
	}

	err := s.deps.Store.CreateDeveloper(ctx, &dev, m.Developer.Password)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicateDeveloper):
		return &message.ResponseDeveloperModification{Message: fmt.Sprintf("Developer %s already exists", dev.Username)}, nil
	case isPasswordError(err):
		return &message.ResponseDeveloperModification{Message: passwordText(err)}, nil
	default:
		return nil, fmt.Errorf("create developer %s: %w", dev.Username, err)
	}

	logger.InfoCtx(ctx, "Created developer", "developer", dev.Username, logger.KeyAdmin, dev.IsAdmin)
	return &message.ResponseDeveloperModification{
		ModifiedDeveloper: true,
		Message:           fmt.Sprintf("Created new developer: %s", dev.Username),
	}, nil
}

// handleUpdateDeveloper updates a profile. Only admins may change the
// admin flag; an empty password keeps the current one.
func (s *Session) handleUpdateDeveloper(ctx context.Context, m *message.UpdateDeveloper, _ *target) (message.Message, error) {
	dev := m.Developer.Model()

	var err error
	if s.admin {
		err = s.deps.Store.UpdateDeveloper(ctx, &dev)
	} else {
		err = s.deps.Store.UpdateDeveloperNoAdmin(ctx, &dev)
	}
	if errors.Is(err, models.ErrDeveloperNotFound) {
		return &message.ResponseDeveloperModification{Message: fmt.Sprintf("Developer does not exist: %s", dev.Username)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update developer %s: %w", dev.Username, err)
	}

	if m.Developer.Password != "" {
		if err := s.deps.Store.UpdateDeveloperPassword(ctx, dev.Username, m.Developer.Password); err != nil {
			if isPasswordError(err) {
				return &message.ResponseDeveloperModification{Message: passwordText(err)}, nil
			}
			return nil, fmt.Errorf("update password of %s: %w", dev.Username, err)
		}
	}

	logger.InfoCtx(ctx, "Updated developer", "developer", dev.Username)
	return &message.ResponseDeveloperModification{
		ModifiedDeveloper: true,
		Message:           fmt.Sprintf("Updated developer: %s", dev.Username),
	}, nil
}

func (s *Session) handleDeleteDeveloper(ctx context.Context, m *message.DeleteDeveloper, _ *target) (message.Message, error) {
	username := models.NormalizeUsername(m.Developer.Username)

	err := s.deps.Store.DeleteDeveloper(ctx, username)
	if errors.Is(err, models.ErrDeveloperNotFound) {
		return &message.ResponseDeveloperModification{Message: fmt.Sprintf("Developer does not exist: %s", username)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete developer %s: %w", username, err)
	}

	logger.InfoCtx(ctx, "Deleted developer", "developer", username)
	return &message.ResponseDeveloperModification{
		ModifiedDeveloper: true,
		Message:           fmt.Sprintf("Deleted developer: %s", username),
	}, nil
}

func (s *Session) handleRequestDeveloper(ctx context.Context, m *message.RequestDeveloper, _ *target) (message.Message, error) {
	username := models.NormalizeUsername(m.Username)

	dev, err := s.deps.Store.GetDeveloper(ctx, username)
	if errors.Is(err, models.ErrDeveloperNotFound) {
		return &message.ResponseDeveloper{Message: fmt.Sprintf("Developer does not exist: %s", username)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get developer %s: %w", username, err)
	}

	return &message.ResponseDeveloper{
		DeveloperExists: true,
		Message:         "Developer exists",
		Developer:       message.FromDeveloper(*dev),
	}, nil
}

func isPasswordError(err error) bool {
	return errors.Is(err, store.ErrPasswordEmpty) || errors.Is(err, store.ErrPasswordTooLong)
}

func passwordText(err error) string {
	if errors.Is(err, store.ErrPasswordTooLong) {
		return fmt.Sprintf("Password must be at most %d bytes", store.MaxPasswordLength)
	}
	return "Password must not be empty"
}
