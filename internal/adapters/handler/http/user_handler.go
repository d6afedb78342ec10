package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
)

type UserHandler struct {
	svc *services.UserService
	log *zap.Logger
}

func NewUserHandler(svc *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		svc: svc,
		log: logger.OrNop(log),
	}
}

type onboardUserRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" binding:"required"`
	Timezone   string `json:"timezone"`
	BatchStart string `json:"batch_start" binding:"required"`
}

type pauseUserRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type adjustTrustRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/users", h.Onboard)

	user := router.Group("/users/:userId")
	{
		user.GET("", h.Get)
		user.POST("/pause", h.Pause)
		user.POST("/resume", h.Resume)
		user.POST("/trust", h.AdjustTrust)
	}
}

func (h *UserHandler) Onboard(c *gin.Context) {
	var req onboardUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	// A bare date starts the batch at local midnight. An unknown zone falls
	// back to UTC here and is rejected by onboarding.
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		loc = time.UTC
	}

	batchStart, err := parseDate(req.BatchStart, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch_start, use YYYY-MM-DD or RFC3339"})
		return
	}

	user, err := h.svc.Onboard(c.Request.Context(), services.OnboardUserInput{
		ID:         req.ID,
		Name:       req.Name,
		Timezone:   req.Timezone,
		BatchStart: batchStart,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Pause(c *gin.Context) {
	var req pauseUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	user, err := h.svc.Pause(c.Request.Context(), c.Param("userId"), req.Reason)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Resume(c *gin.Context) {
	user, err := h.svc.Resume(c.Request.Context(), c.Param("userId"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) AdjustTrust(c *gin.Context) {
	var req adjustTrustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.svc.AdjustTrust(c.Request.Context(), c.Param("userId"), *req.Delta)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
