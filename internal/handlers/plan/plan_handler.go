// internal/handlers/plan/plan_handler.go
package plan

import (
	"net/http"
	"strconv"

	"salora-service/internal/domain/plan"
	"salora-service/internal/middleware"
	"salora-service/internal/pkg/response"
	service "salora-service/internal/service/plan"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// ListPlans retrieves subscription plans with filters
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var filters plan.PlanListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	plans, total, err := h.planService.ListPlans(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", gin.H{
		"plans": plans,
		"total": total,
	})
}

// GetPlan retrieves a single subscription plan by ID
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	p, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", p)
}

// PreviewChange computes the proration for a plan change without committing
func (h *PlanHandler) PreviewChange(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)

	var req plan.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	preview, err := h.planService.PreviewChange(c.Request.Context(), salonID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "plan change preview computed", preview)
}

// CommitChange executes the plan change
func (h *PlanHandler) CommitChange(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)

	var req plan.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.planService.CommitChange(c.Request.Context(), salonID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "plan changed", result)
}
