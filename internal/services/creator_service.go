package services

import (
	"context"
	"errors"

	"fanbase_backend/internal/models"
	"fanbase_backend/internal/repositories"
	"fanbase_backend/pkg/apperrors"
)

type CreatorService interface {
	ListCreators(ctx context.Context, page, pageSize int) ([]models.CreatorView, int64, error)
	GetCreator(ctx context.Context, creatorID string) (*models.CreatorView, error)
	BecomeCreator(ctx context.Context, userID string, req *models.BecomeCreatorRequest) (*models.User, error)
}

type creatorService struct {
	store repositories.Store
}

func NewCreatorService(store repositories.Store) CreatorService {
	return &creatorService{store: store}
}

func (s *creatorService) ListCreators(ctx context.Context, page, pageSize int) ([]models.CreatorView, int64, error) {
	offset := (page - 1) * pageSize
	creators, total, err := s.store.Users().FindCreators(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, apperrors.StorageError(err)
	}

	views := make([]models.CreatorView, 0, len(creators))
	for i := range creators {
		views = append(views, toCreatorView(&creators[i], 0, nil))
	}
	return views, total, nil
}

func (s *creatorService) GetCreator(ctx context.Context, creatorID string) (*models.CreatorView, error) {
	user, err := s.store.Users().FindByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "creator", "Creator not found")
		}
		return nil, apperrors.StorageError(err)
	}
	if user.Role != models.UserRoleCreator {
		return nil, apperrors.ErrNotFound(repositories.ErrUserNotFound, "creator", "Creator not found")
	}

	subscribers, err := s.store.Subscriptions().CountActiveByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}

	plans, err := s.store.Plans().FindByCreator(ctx, creatorID, true)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}

	view := toCreatorView(user, subscribers, plans)
	return &view, nil
}

// BecomeCreator переводит пользователя в роль создателя
func (s *creatorService) BecomeCreator(ctx context.Context, userID string, req *models.BecomeCreatorRequest) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "user", "User not found")
		}
		return nil, apperrors.StorageError(err)
	}

	if user.Role == models.UserRoleCreator {
		return nil, apperrors.ErrInvalidOperation("creator", "User is already a creator")
	}
	if user.Role == models.UserRoleAdmin {
		return nil, apperrors.ErrInvalidUserRole
	}

	user.Role = models.UserRoleCreator
	user.DisplayName = req.DisplayName
	user.Bio = req.Bio

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperrors.StorageError(err)
	}
	return user, nil
}

func toCreatorView(user *models.User, subscribers int64, plans []models.Plan) models.CreatorView {
	name := user.DisplayName
	if name == "" {
		name = user.Name
	}
	return models.CreatorView{
		ID:              user.ID,
		DisplayName:     name,
		Bio:             user.Bio,
		AvatarURL:       user.AvatarURL,
		SubscriberCount: subscribers,
		Plans:           plans,
	}
}
