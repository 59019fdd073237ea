package notification

import (
	"net/http"
	"strconv"

	"timetrack/internal/shared/apperror"
	"timetrack/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("notification.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetString("user_id_validated")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(maxPerUser)))

	items, err := h.service.ListMine(c.Request.Context(), userID, limit)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("list notifications failed", zap.String("user_id", userID), zap.Error(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, items, nil)
}
