package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
	"github.com/erp/storesync/internal/interfaces/http/dto"
	"github.com/erp/storesync/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// sentinelCodes maps sync errors to API codes. Order matters: the first
// match wins.
var sentinelCodes = []struct {
	err     error
	code    string
	message string
}{
	{integration.ErrSyncInProgress, dto.ErrCodeSyncInProgress, "A sync of this kind is already running"},
	{integration.ErrPlatformNotConfigured, dto.ErrCodePlatformNotConfigured, "The storefront connection is not configured"},
	{integration.ErrPlatformRateLimited, dto.ErrCodePlatformUnavailable, "The storefront is rate limiting requests"},
	{integration.ErrPlatformUnavailable, dto.ErrCodePlatformUnavailable, "The storefront is unavailable"},
	{integration.ErrPlatformRequestFailed, dto.ErrCodePlatformRequestFailed, "The storefront rejected the request"},
	{integration.ErrPlatformInvalidResponse, dto.ErrCodePlatformRequestFailed, "The storefront returned an invalid response"},
	{integration.ErrSettlementAccountNotConfigured, dto.ErrCodeSettlementAccountMissing, "No settlement account is configured for order payments"},
	{integration.ErrInvalidSetting, dto.ErrCodeInvalidSetting, ""},
	{integration.ErrInvalidSyncKind, dto.ErrCodeInvalidInput, ""},
	{integration.ErrInvalidSyncOperation, dto.ErrCodeInvalidInput, ""},
	{integration.ErrUnknownTaxRate, dto.ErrCodeInvalidInput, ""},
	{finance.ErrVatRateNotFound, dto.ErrCodeNotFound, ""},
	{finance.ErrInvalidTaxRateLink, dto.ErrCodeInvalidInput, ""},
}

// HandleError converts sync and domain errors to HTTP responses. An empty
// message in sentinelCodes means the error text is safe to show as is.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			message := s.message
			if message == "" {
				message = err.Error()
			}
			h.ErrorWithCode(c, s.code, message)
			return
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	// Default to internal error for unknown error types
	h.InternalError(c, "An unexpected error occurred")
}
