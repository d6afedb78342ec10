package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
)

type ProofHandler struct {
	svc *services.ProofService
	log *zap.Logger
}

func NewProofHandler(svc *services.ProofService, log *zap.Logger) *ProofHandler {
	return &ProofHandler{
		svc: svc,
		log: logger.OrNop(log),
	}
}

type recordProofRequest struct {
	Date          string `json:"date"`
	Unit          string `json:"unit"`
	Note          string `json:"note"`
	AttachmentURL string `json:"attachment_url" binding:"omitempty,url"`
	IsMinimalDose bool   `json:"is_minimal_dose"`
	IsCheatDay    bool   `json:"is_cheat_day"`
}

func (h *ProofHandler) RegisterRoutes(router *gin.RouterGroup) {
	proofs := router.Group("/users/:userId/habits/:habitId/proofs")
	{
		proofs.POST("", h.Record)
		proofs.GET("", h.List)
	}
}

func (h *ProofHandler) Record(c *gin.Context) {
	var req recordProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	// Calendar dates are kept as written; instants are projected onto the
	// user's own calendar by the service.
	var (
		date time.Time
		day  string
	)
	switch {
	case req.Date == "":
	case isCalendarDate(req.Date):
		day = req.Date
	default:
		d, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD or RFC3339"})
			return
		}
		date = d
	}

	proof, err := h.svc.Record(c.Request.Context(), services.RecordProofInput{
		UserID:        c.Param("userId"),
		HabitID:       c.Param("habitId"),
		Date:          date,
		Day:           day,
		Unit:          req.Unit,
		Note:          req.Note,
		AttachmentURL: req.AttachmentURL,
		IsMinimalDose: req.IsMinimalDose,
		IsCheatDay:    req.IsCheatDay,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, proof)
}

func (h *ProofHandler) List(c *gin.Context) {
	list, err := h.svc.ListByHabit(c.Request.Context(), c.Param("userId"), c.Param("habitId"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
