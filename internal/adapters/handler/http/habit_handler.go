package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
)

type HabitHandler struct {
	svc *services.HabitService
	log *zap.Logger
}

func NewHabitHandler(svc *services.HabitService, log *zap.Logger) *HabitHandler {
	return &HabitHandler{
		svc: svc,
		log: logger.OrNop(log),
	}
}

type createHabitRequest struct {
	Name         string   `json:"name" binding:"required"`
	Domains      []string `json:"domains"`
	WeeklyTarget int      `json:"weekly_target" binding:"required"`
	Context      string   `json:"context"`
	Difficulty   string   `json:"difficulty"`
	SmartGoal    string   `json:"smart_goal"`
	Why          string   `json:"why"`
	MinimalDose  string   `json:"minimal_dose"`
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/users/:userId/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.PATCH("/:habitId/status", h.ChangeStatus)
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:       c.Param("userId"),
		Name:         req.Name,
		Domains:      req.Domains,
		WeeklyTarget: req.WeeklyTarget,
		Context:      req.Context,
		Difficulty:   req.Difficulty,
		SmartGoal:    req.SmartGoal,
		Why:          req.Why,
		MinimalDose:  req.MinimalDose,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	list, err := h.svc.ListByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) ChangeStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	habit, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("userId"), c.Param("habitId"), domain.HabitStatus(req.Status))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}
