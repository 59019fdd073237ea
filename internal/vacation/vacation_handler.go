package vacation

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

func NewHandler(svc Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("vacation.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("vacation.handler")
	}
	return &Handler{service: svc, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("vacation request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func pageParams(c *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	return skip, limit
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, apperror.MapValidationError(err))
		return
	}

	res, err := h.service.Create(c.Request.Context(), c.GetString("user_id_validated"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res, nil)
}

func (h *Handler) MyRequests(c *gin.Context) {
	skip, limit := pageParams(c)
	res, err := h.service.GetMyRequests(c.Request.Context(), c.GetString("user_id_validated"), skip, limit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Pending(c *gin.Context) {
	skip, limit := pageParams(c)
	res, err := h.service.GetPending(c.Request.Context(), skip, limit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	res, err := h.service.GetByID(c.Request.Context(), c.GetString("user_id_validated"), c.GetString("role"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, apperror.MapValidationError(err))
		return
	}

	res, err := h.service.Update(c.Request.Context(), c.GetString("user_id_validated"), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	res, err := h.service.Approve(c.Request.Context(), c.GetString("user_id_validated"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

// Reject reads rejection_reason from the JSON body, or from the query string
// when no body is sent.
func (h *Handler) Reject(c *gin.Context) {
	var req RejectVacationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Abort(c, apperror.MapValidationError(err))
			return
		}
	}
	if req.RejectionReason == "" {
		req.RejectionReason = c.Query("rejection_reason")
	}

	res, err := h.service.Reject(c.Request.Context(), c.GetString("user_id_validated"), c.Param("id"), req.RejectionReason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	res, err := h.service.Cancel(c.Request.Context(), c.GetString("user_id_validated"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}
