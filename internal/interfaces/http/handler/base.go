package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tafa/dashboard/internal/domain/ledger"
	"github.com/tafa/dashboard/internal/domain/shared"
	"github.com/tafa/dashboard/internal/infrastructure/export"
	"github.com/tafa/dashboard/internal/infrastructure/logger"
	"github.com/tafa/dashboard/internal/interfaces/http/dto"
	"github.com/tafa/dashboard/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response for a failed binding
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	logger.GetGinLogger(c).Warn("Request validation failed", zap.Error(err))
	middleware.HandleValidationError(c, err)
}

// HandleError converts domain errors to HTTP responses and logs the failure.
// This is the only place a request error is logged.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	log := logger.GetGinLogger(c)
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		fields := []zap.Field{zap.String("code", code), zap.Int("status", status), zap.Error(err)}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", fields...)
		} else {
			log.Warn("Request rejected", fields...)
		}
		h.Error(c, status, code, domainErr.Message)
		return
	}

	log.Error("Unexpected error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

// Download renders t in a download format as an attachment named base.
// The file is built in memory so a failed export still gets an error response.
func (h *BaseHandler) Download(c *gin.Context, t *ledger.Table, format export.Format, base string) {
	var buf bytes.Buffer
	if err := export.Write(&buf, t, format); err != nil {
		h.HandleError(c, fmt.Errorf("failed to export %s: %w", base, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(base)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
