package repositories

import (
	"context"

	"fanbase_backend/internal/models"

	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	FindByCreator(ctx context.Context, creatorID string, activeOnly bool) ([]models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	Deactivate(ctx context.Context, id string) error
}

type planRepository struct {
	db *gorm.DB
}

func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	return translate(r.db.WithContext(ctx).Create(plan).Error, ErrPlanNotFound)
}

func (r *planRepository) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, ErrPlanNotFound)
	}
	return &plan, nil
}

func (r *planRepository) FindByCreator(ctx context.Context, creatorID string, activeOnly bool) ([]models.Plan, error) {
	q := r.db.WithContext(ctx).Where("creator_id = ?", creatorID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var plans []models.Plan
	if err := q.Order("price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, plan *models.Plan) error {
	return translate(r.db.WithContext(ctx).Save(plan).Error, ErrPlanNotFound)
}

// Deactivate снимает план с продажи. Планы не удаляются:
// на них ссылаются транзакции и подписки.
func (r *planRepository) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Plan{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}
