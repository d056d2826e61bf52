package rest

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mintbay/marketplace/internal/api/shared/errors"
	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/logger"
)

// respondError writes an error response as {"error": {...}}, the shape the
// API client decodes back
func respondError(c *gin.Context, status int, apiErr *errors.APIError) {
	c.JSON(status, gin.H{"error": apiErr})
}

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondError(c, http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondError(c, http.StatusNotFound, errors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	respondError(c, http.StatusUnprocessableEntity, errors.NewValidationError(message))
}

// respondForbidden responds with a forbidden error
func respondForbidden(c *gin.Context, message string, details ...string) {
	respondError(c, http.StatusForbidden, errors.NewForbiddenError(message, details...))
}

// respondConflict responds with a conflict error
func respondConflict(c *gin.Context, message string, details ...string) {
	respondError(c, http.StatusConflict, errors.NewConflictError(message, details...))
}

// respondServiceUnavailable responds with a service error
func respondServiceUnavailable(c *gin.Context, message string, details ...string) {
	respondError(c, http.StatusServiceUnavailable, errors.NewServiceError(message, details...))
}

// respondInternalError responds with an internal server error and logs it
func respondInternalError(c *gin.Context, err error, message string, details ...string) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	respondError(c, http.StatusInternalServerError, errors.NewInternalError(message, details...))
}

// respondDomainError maps trading errors onto HTTP status codes. Anything
// unrecognized is treated as an internal error.
func respondDomainError(c *gin.Context, err error, message string) {
	switch {
	case stderrors.Is(err, domain.ErrNotFound):
		respondNotFound(c, message, err.Error())
	case stderrors.Is(err, domain.ErrNotOwner), stderrors.Is(err, domain.ErrSelfPurchase):
		respondForbidden(c, message, err.Error())
	case stderrors.Is(err, domain.ErrListingConflict),
		stderrors.Is(err, domain.ErrAlreadySold),
		stderrors.Is(err, domain.ErrInvalidState):
		respondConflict(c, message, err.Error())
	default:
		respondInternalError(c, err, message)
	}
}
