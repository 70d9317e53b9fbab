package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/middleware"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// HealthResponse reports the status of each dependency
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// statusFor maps the error taxonomy to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrMissingContact),
		errors.Is(err, models.ErrExpired),
		errors.Is(err, models.ErrIncorrectCode):
		return http.StatusNotFound
	case errors.Is(err, models.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response for err. Internal failures never leak details.
func errorBody(err error) ErrorResponse {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return ErrorResponse{Error: services.OutcomeLabel(err), Fields: verr.Fields}
	}
	if statusFor(err) == http.StatusInternalServerError {
		return ErrorResponse{Error: "internal_error"}
	}
	return ErrorResponse{Error: services.OutcomeLabel(err)}
}

// writeError answers with the mapped status and logs server side failures
func writeError(c *gin.Context, logger *logging.SafeLogger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err), zap.String("request_id", c.GetString(middleware.RequestIDKey)))
	}
	body := errorBody(err)
	middleware.SetErrorCode(c, body.Error)
	c.JSON(status, body)
}

// bindError answers a body that could not be decoded
func bindError(c *gin.Context, err error) {
	middleware.SetErrorCode(c, "invalid_payload")
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_payload", Fields: []models.FieldError{{Field: "body", Message: err.Error()}}})
}

// requestContext carries the caller identity into the services for auditing
func requestContext(c *gin.Context) context.Context {
	return services.WithRequestMeta(c.Request.Context(), services.RequestMeta{
		IPAddress: c.ClientIP(),
		RequestID: c.GetString(middleware.RequestIDKey),
	})
}
