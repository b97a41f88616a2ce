package services

import (
	"context"
	"errors"

	"fanbase_backend/internal/models"
	"fanbase_backend/internal/repositories"
	"fanbase_backend/pkg/apperrors"
)

type PlanService interface {
	GetCreatorPlans(ctx context.Context, creatorID string) ([]models.Plan, error)
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	CreatePlan(ctx context.Context, creatorID string, req *models.CreatePlanRequest) (*models.Plan, error)
	UpdatePlan(ctx context.Context, creatorID, planID string, req *models.UpdatePlanRequest) (*models.Plan, error)
	DeactivatePlan(ctx context.Context, creatorID, planID string) error
}

type planService struct {
	store repositories.Store
}

func NewPlanService(store repositories.Store) PlanService {
	return &planService{store: store}
}

func (s *planService) GetCreatorPlans(ctx context.Context, creatorID string) ([]models.Plan, error) {
	plans, err := s.store.Plans().FindByCreator(ctx, creatorID, true)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	return plans, nil
}

func (s *planService) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	plan, err := s.store.Plans().FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrNotFound(err, "plan", "Plan not found")
		}
		return nil, apperrors.StorageError(err)
	}
	return plan, nil
}

func (s *planService) CreatePlan(ctx context.Context, creatorID string, req *models.CreatePlanRequest) (*models.Plan, error) {
	creator, err := s.store.Users().FindByID(ctx, creatorID)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	if creator.Role != models.UserRoleCreator {
		return nil, apperrors.ErrInvalidUserRole
	}

	plan := &models.Plan{
		CreatorID:   creatorID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    "IDR",
		Interval:    models.PlanInterval(req.Interval),
		IsActive:    true,
	}
	if err := s.store.Plans().Create(ctx, plan); err != nil {
		return nil, apperrors.StorageError(err)
	}
	return plan, nil
}

func (s *planService) UpdatePlan(ctx context.Context, creatorID, planID string, req *models.UpdatePlanRequest) (*models.Plan, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.CreatorID != creatorID {
		return nil, apperrors.NewForbiddenError("Plan belongs to another creator")
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Interval != nil {
		plan.Interval = models.PlanInterval(*req.Interval)
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.store.Plans().Update(ctx, plan); err != nil {
		return nil, apperrors.StorageError(err)
	}
	return plan, nil
}

func (s *planService) DeactivatePlan(ctx context.Context, creatorID, planID string) error {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.CreatorID != creatorID {
		return apperrors.NewForbiddenError("Plan belongs to another creator")
	}
	if err := s.store.Plans().Deactivate(ctx, planID); err != nil {
		return apperrors.StorageError(err)
	}
	return nil
}
