package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
)

type MessageHandler struct {
	svc *services.ProofService
	log *zap.Logger
}

func NewMessageHandler(svc *services.ProofService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		svc: svc,
		log: logger.OrNop(log),
	}
}

type ingestMessageRequest struct {
	ID            string     `json:"id" binding:"required"`
	SenderID      string     `json:"sender_id" binding:"required"`
	Channel       string     `json:"channel"`
	Text          string     `json:"text"`
	AttachmentURL string     `json:"attachment_url" binding:"omitempty,url"`
	ReceivedAt    *time.Time `json:"received_at"`
}

func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/messages", h.Ingest)
}

// Ingest answers 201 when a new proof was stored and 200 otherwise, with the
// classification outcome in the body either way.
func (h *MessageHandler) Ingest(c *gin.Context) {
	var req ingestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	msg := domain.Message{
		ID:            req.ID,
		SenderID:      req.SenderID,
		Channel:       req.Channel,
		Text:          req.Text,
		AttachmentURL: req.AttachmentURL,
	}
	if req.ReceivedAt != nil {
		msg.ReceivedAt = *req.ReceivedAt
	}

	res, err := h.svc.Ingest(c.Request.Context(), msg)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if res.Proof != nil && !res.Duplicate {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}
