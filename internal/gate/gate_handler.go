package gate

import (
	"net/http"

	"go-outpass/internal/shared/apperror"
	"go-outpass/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("gate.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("gate.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("gate request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) QRCode(c *gin.Context) {
	ctx := c.Request.Context()

	png, err := h.service.QRCodePNG(ctx, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) Scan(c *gin.Context) {
	ctx := c.Request.Context()

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http gate scan validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Scan(ctx, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
