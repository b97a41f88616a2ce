package handlers

import (
	"net/http"

	"fanbase_backend/internal/middleware"
	"fanbase_backend/internal/models"
	"fanbase_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// PlanHandler - управление тарифными планами со стороны создателя.
// Публичное чтение планов живет в CreatorHandler.
type PlanHandler struct {
	*BaseHandler
	planService services.PlanService
}

func NewPlanHandler(base *BaseHandler, planService services.PlanService) *PlanHandler {
	return &PlanHandler{
		BaseHandler: base,
		planService: planService,
	}
}

func (h *PlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/plans")
	plans.Use(middleware.AuthMiddleware())
	plans.Use(middleware.RoleMiddleware(models.UserRoleCreator))
	{
		plans.POST("", h.CreatePlan)
		plans.PATCH("/:planId", h.UpdatePlan)
		plans.DELETE("/:planId", h.DeactivatePlan)
	}
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.CreatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.UpdatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, c.Param("planId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeactivatePlan снимает план с продажи. Планы не удаляются:
// на них ссылаются прошлые транзакции и подписки.
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.planService.DeactivatePlan(c.Request.Context(), userID, c.Param("planId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deactivated"})
}
