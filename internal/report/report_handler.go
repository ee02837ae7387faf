package report

import (
	"net/http"
	"strconv"

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
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func criteriaFromQuery(c *gin.Context) Criteria {
	return Criteria{
		Search:            c.Query("search"),
		DateFrom:          c.Query("date_from"),
		DateTo:            c.Query("date_to"),
		Status:            c.Query("status"),
		PermissionType:    c.Query("permission_type"),
		Hostel:            c.Query("hostel"),
		ViolationCategory: c.Query("violation"),
	}
}

func (h *Handler) GetReports(c *gin.Context) {
	ctx := c.Request.Context()
	criteria := criteriaFromQuery(c)

	result, err := h.service.Query(ctx, criteria)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}

	records := result.Filtered
	total := int64(len(records))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, gin.H{
		"records": records[start:end],
		"stats":   result.Stats,
	}, &meta)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.service.Stats(ctx, criteriaFromQuery(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats, nil)
}

func (h *Handler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.Refresh(ctx); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.service.Meta(), nil)
}

func (h *Handler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	receipt, err := h.service.Export(ctx, criteriaFromQuery(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, receipt, nil)
}
