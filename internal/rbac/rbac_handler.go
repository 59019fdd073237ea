package rbac

import (
	"net/http"

	"timetrack/internal/domain"
	"timetrack/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// Permissions returns the caller's capabilities for client-side gating.
func (h *Handler) Permissions(c *gin.Context) {
	role := c.GetString("role")

	perms, err := h.service.PermissionsForRole(role)
	if err != nil {
		h.logger.Error("list permissions failed", zap.String("role", role), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, domain.PermissionsResponse{
		Role:        role,
		Permissions: perms,
	}, nil)
}
