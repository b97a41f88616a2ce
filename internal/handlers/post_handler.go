package handlers

import (
	"net/http"

	"fanbase_backend/internal/middleware"
	"fanbase_backend/internal/models"
	"fanbase_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	*BaseHandler
	postService services.PostService
}

func NewPostHandler(base *BaseHandler, postService services.PostService) *PostHandler {
	return &PostHandler{
		BaseHandler: base,
		postService: postService,
	}
}

// RegisterRoutes регистрирует маршруты постов.
// Чтение доступно анонимам (premium-контент будет скрыт),
// запись - только авторизованным.
func (h *PostHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("/creators/:creatorId/posts", h.GetCreatorFeed)
		public.GET("/posts/:postId", h.GetPost)
		public.GET("/posts/:postId/comments", h.GetComments)
	}

	authed := rg.Group("/posts")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/:postId/like", h.LikePost)
		authed.POST("/:postId/comments", h.AddComment)
	}

	creator := rg.Group("/posts")
	creator.Use(middleware.AuthMiddleware())
	creator.Use(middleware.RoleMiddleware(models.UserRoleCreator))
	{
		creator.POST("", h.CreatePost)
		creator.PATCH("/:postId", h.UpdatePost)
		creator.DELETE("/:postId", h.DeletePost)
	}
}

func (h *PostHandler) GetCreatorFeed(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	viewerID := h.GetOptionalUserID(c)

	posts, total, err := h.postService.GetCreatorFeed(c.Request.Context(), viewerID, c.Param("creatorId"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": total,
		"page":  page,
	})
}

func (h *PostHandler) GetPost(c *gin.Context) {
	viewerID := h.GetOptionalUserID(c)

	post, err := h.postService.GetPost(c.Request.Context(), viewerID, c.Param("postId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) GetComments(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	comments, err := h.postService.GetComments(c.Request.Context(), c.Param("postId"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *PostHandler) LikePost(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.postService.LikePost(c.Request.Context(), userID, c.Param("postId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Liked"})
}

func (h *PostHandler) AddComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.postService.AddComment(c.Request.Context(), userID, c.Param("postId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.CreatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.UpdatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), userID, c.Param("postId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), userID, c.Param("postId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
