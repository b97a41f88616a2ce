package repositories

import (
	"context"

	"fanbase_backend/internal/models"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	FindByCreator(ctx context.Context, creatorID string, offset, limit int) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error

	IncrementLikes(ctx context.Context, postID string) error
	CreateComment(ctx context.Context, comment *models.Comment) error
	FindComments(ctx context.Context, postID string, offset, limit int) ([]models.Comment, error)
}

type postRepository struct {
	db *gorm.DB
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error, ErrPostNotFound)
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, ErrPostNotFound)
	}
	return &post, nil
}

func (r *postRepository) FindByCreator(ctx context.Context, creatorID string, offset, limit int) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("creator_id = ?", creatorID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Save(post).Error, ErrPostNotFound)
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Счетчик лайков инкрементируется на стороне базы, без read-modify-write
func (r *postRepository) IncrementLikes(ctx context.Context, postID string) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("like_count", gorm.Expr("like_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", comment.PostID).
		Update("comment_count", gorm.Expr("comment_count + 1")).Error
}

func (r *postRepository) FindComments(ctx context.Context, postID string, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
