package services

import (
	"context"
	"errors"

	"fanbase_backend/internal/models"
	"fanbase_backend/internal/repositories"
	"fanbase_backend/pkg/apperrors"
)

type PostService interface {
	CreatePost(ctx context.Context, creatorID string, req *models.CreatePostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, creatorID, postID string, req *models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, creatorID, postID string) error

	// GetPost и GetCreatorFeed возвращают посты глазами viewerID:
	// контент premium-постов скрыт без активной подписки на создателя.
	GetPost(ctx context.Context, viewerID, postID string) (*models.PostView, error)
	GetCreatorFeed(ctx context.Context, viewerID, creatorID string, page, pageSize int) ([]models.PostView, int64, error)

	LikePost(ctx context.Context, userID, postID string) error
	AddComment(ctx context.Context, userID, postID string, req *models.CreateCommentRequest) (*models.Comment, error)
	GetComments(ctx context.Context, postID string, page, pageSize int) ([]models.Comment, error)
}

type postService struct {
	store repositories.Store
	subs  SubscriptionService
}

func NewPostService(store repositories.Store, subs SubscriptionService) PostService {
	return &postService{store: store, subs: subs}
}

func (s *postService) CreatePost(ctx context.Context, creatorID string, req *models.CreatePostRequest) (*models.Post, error) {
	creator, err := s.store.Users().FindByID(ctx, creatorID)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	if creator.Role != models.UserRoleCreator {
		return nil, apperrors.ErrInvalidUserRole
	}

	post := &models.Post{
		CreatorID: creatorID,
		Title:     req.Title,
		Content:   req.Content,
		IsPremium: req.IsPremium,
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, apperrors.StorageError(err)
	}
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, creatorID, postID string, req *models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.findOwnedPost(ctx, creatorID, postID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.IsPremium != nil {
		post.IsPremium = *req.IsPremium
	}

	if err := s.store.Posts().Update(ctx, post); err != nil {
		return nil, apperrors.StorageError(err)
	}
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, creatorID, postID string) error {
	if _, err := s.findOwnedPost(ctx, creatorID, postID); err != nil {
		return err
	}
	if err := s.store.Posts().Delete(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return apperrors.ErrNotFound(err, "post", "Post not found")
		}
		return apperrors.StorageError(err)
	}
	return nil
}

func (s *postService) GetPost(ctx context.Context, viewerID, postID string) (*models.PostView, error) {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrNotFound(err, "post", "Post not found")
		}
		return nil, apperrors.StorageError(err)
	}

	unlocked, err := s.viewerUnlocked(ctx, viewerID, post.CreatorID)
	if err != nil {
		return nil, err
	}

	view := toPostView(post, unlocked)
	return &view, nil
}

func (s *postService) GetCreatorFeed(ctx context.Context, viewerID, creatorID string, page, pageSize int) ([]models.PostView, int64, error) {
	offset := (page - 1) * pageSize
	posts, total, err := s.store.Posts().FindByCreator(ctx, creatorID, offset, pageSize)
	if err != nil {
		return nil, 0, apperrors.StorageError(err)
	}

	// Одна проверка подписки на всю ленту, не per-post
	unlocked, err := s.viewerUnlocked(ctx, viewerID, creatorID)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, toPostView(&posts[i], unlocked))
	}
	return views, total, nil
}

func (s *postService) LikePost(ctx context.Context, userID, postID string) error {
	if err := s.store.Posts().IncrementLikes(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return apperrors.ErrNotFound(err, "post", "Post not found")
		}
		return apperrors.StorageError(err)
	}
	return nil
}

func (s *postService) AddComment(ctx context.Context, userID, postID string, req *models.CreateCommentRequest) (*models.Comment, error) {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrNotFound(err, "post", "Post not found")
		}
		return nil, apperrors.StorageError(err)
	}

	// Комментировать premium-пост может только тот, кто его видит
	unlocked, err := s.viewerUnlocked(ctx, userID, post.CreatorID)
	if err != nil {
		return nil, err
	}
	if post.IsPremium && !unlocked {
		return nil, apperrors.NewForbiddenError("Active subscription required to comment on this post")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := s.store.Posts().CreateComment(ctx, comment); err != nil {
		return nil, apperrors.StorageError(err)
	}
	return comment, nil
}

func (s *postService) GetComments(ctx context.Context, postID string, page, pageSize int) ([]models.Comment, error) {
	offset := (page - 1) * pageSize
	comments, err := s.store.Posts().FindComments(ctx, postID, offset, pageSize)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	return comments, nil
}

func (s *postService) findOwnedPost(ctx context.Context, creatorID, postID string) (*models.Post, error) {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrNotFound(err, "post", "Post not found")
		}
		return nil, apperrors.StorageError(err)
	}
	if post.CreatorID != creatorID {
		return nil, apperrors.NewForbiddenError("Post belongs to another creator")
	}
	return post, nil
}

// viewerUnlocked - видит ли зритель premium-контент создателя.
// Сам создатель всегда видит свои посты.
func (s *postService) viewerUnlocked(ctx context.Context, viewerID, creatorID string) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	if viewerID == creatorID {
		return true, nil
	}
	return s.subs.HasActiveSubscription(ctx, viewerID, creatorID)
}

func toPostView(post *models.Post, unlocked bool) models.PostView {
	view := models.PostView{
		ID:           post.ID,
		CreatorID:    post.CreatorID,
		Title:        post.Title,
		Content:      post.Content,
		IsPremium:    post.IsPremium,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
	}
	if post.IsPremium && !unlocked {
		view.Content = ""
		view.Locked = true
	}
	return view
}
