package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
)

type ProgressHandler struct {
	svc *services.ProgressService
	log *zap.Logger
}

func NewProgressHandler(svc *services.ProgressService, log *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		svc: svc,
		log: logger.OrNop(log),
	}
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	user := router.Group("/users/:userId")
	{
		user.GET("/cycle", h.Cycle)
		user.GET("/dashboard", h.Dashboard)
		user.GET("/habits/:habitId/progress", h.HabitProgress)
	}
}

func (h *ProgressHandler) Cycle(c *gin.Context) {
	cc, err := h.svc.Cycle(c.Request.Context(), c.Param("userId"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cc)
}

func (h *ProgressHandler) Dashboard(c *gin.Context) {
	view, err := h.svc.Dashboard(c.Request.Context(), c.Param("userId"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ProgressHandler) HabitProgress(c *gin.Context) {
	p, err := h.svc.HabitProgress(c.Request.Context(), c.Param("userId"), c.Param("habitId"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
