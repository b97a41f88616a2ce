package handlers

import (
	"net/http"

	"fanbase_backend/internal/middleware"
	"fanbase_backend/internal/models"
	"fanbase_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CreatorHandler struct {
	*BaseHandler
	creatorService services.CreatorService
	planService    services.PlanService
}

func NewCreatorHandler(base *BaseHandler, creatorService services.CreatorService, planService services.PlanService) *CreatorHandler {
	return &CreatorHandler{
		BaseHandler:    base,
		creatorService: creatorService,
		planService:    planService,
	}
}

// RegisterRoutes регистрирует маршруты создателей
func (h *CreatorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	creators := rg.Group("/creators")
	{
		creators.GET("", h.ListCreators)
		creators.GET("/:creatorId", h.GetCreator)
		creators.GET("/:creatorId/plans", h.GetCreatorPlans)
	}

	profile := rg.Group("/creators")
	profile.Use(middleware.AuthMiddleware())
	{
		profile.POST("/become", h.BecomeCreator)
	}
}

func (h *CreatorHandler) ListCreators(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	creators, total, err := h.creatorService.ListCreators(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"creators": creators,
		"total":    total,
		"page":     page,
	})
}

func (h *CreatorHandler) GetCreator(c *gin.Context) {
	creator, err := h.creatorService.GetCreator(c.Request.Context(), c.Param("creatorId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, creator)
}

func (h *CreatorHandler) GetCreatorPlans(c *gin.Context) {
	plans, err := h.planService.GetCreatorPlans(c.Request.Context(), c.Param("creatorId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *CreatorHandler) BecomeCreator(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.BecomeCreatorRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.creatorService.BecomeCreator(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
