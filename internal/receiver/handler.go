package receiver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sherpa/internal/logger"
)

// Handler adapts the webhook service to HTTP. It stays a thin translation
// layer: all routing and policy lives in the service.
type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/slack/events", h.HandleEvent)
}

func (h *Handler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.ErrorwCtx(c.Request.Context(), "Failed to read request body",
			"error", err,
		)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	resp := h.service.Handle(c.Request.Context(), Request{
		Headers: c.Request.Header,
		Body:    string(body),
	})

	c.Data(resp.Status, resp.ContentType, []byte(resp.Body))
}
