package handlers

import (
	"net/http"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/middleware"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OtpHandlers exposes one-time code issuance and validation
type OtpHandlers struct {
	issuer    *services.OtpIssuer
	validator *services.OtpValidator
	logger    *logging.SafeLogger
}

// NewOtpHandlers creates the one-time code handlers
func NewOtpHandlers(issuer *services.OtpIssuer, validator *services.OtpValidator, logger *logging.SafeLogger) *OtpHandlers {
	return &OtpHandlers{issuer: issuer, validator: validator, logger: logger}
}

// IssueOtp godoc
// @Summary Enviar código de verificación
// @Description Genera un código de 6 dígitos y lo envía al correo del visitante. Con solo cédula se usa el correo registrado.
// @Tags otp
// @Accept json
// @Produce json
// @Param data body models.IssueOtpRequest true "Cédula y/o correo"
// @Success 202 {object} models.IssueOtpResponse
// @Failure 400 {object} ErrorResponse "Identidad ausente o inválida"
// @Failure 404 {object} ErrorResponse "Cédula desconocida o sin correo"
// @Failure 500 {object} ErrorResponse "Fallo de entrega"
// @Router /otp/issue [post]
func (h *OtpHandlers) IssueOtp(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "IssueOtp")
	defer span.End()
	span.SetAttributes(attribute.String("operation", "issue_otp"))
	c.Request = c.Request.WithContext(ctx)

	var req models.IssueOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	masked, err := h.issuer.Issue(requestContext(c), models.Destination{Cedula: req.Cedula, Email: req.Email})
	if err != nil {
		writeError(c, h.logger, "failed to issue code", err)
		return
	}

	c.JSON(http.StatusAccepted, models.IssueOtpResponse{Message: "Código enviado a " + masked})
}

// ValidateOtp godoc
// @Summary Validar código de verificación
// @Description Valida el código enviado. Un código correcto se consume y no puede reutilizarse.
// @Tags otp
// @Accept json
// @Produce json
// @Param data body models.ValidateOtpRequest true "Cédula y/o correo con el código"
// @Success 200 {object} models.ValidateOtpResponse
// @Failure 400 {object} models.ValidateOtpResponse "Solicitud inválida"
// @Failure 404 {object} models.ValidateOtpResponse "Código incorrecto, vencido o inexistente"
// @Failure 429 {object} models.ValidateOtpResponse "Demasiados intentos"
// @Failure 500 {object} models.ValidateOtpResponse
// @Router /otp/validate [post]
func (h *OtpHandlers) ValidateOtp(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ValidateOtp")
	defer span.End()
	span.SetAttributes(attribute.String("operation", "validate_otp"))
	c.Request = c.Request.WithContext(ctx)

	var req models.ValidateOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SetErrorCode(c, "invalid_payload")
		c.JSON(http.StatusBadRequest, models.ValidateOtpResponse{Success: false, Error: "invalid_payload"})
		return
	}

	profile, err := h.validator.Validate(requestContext(c), models.Destination{Cedula: req.Cedula, Email: req.Email}, req.Code)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to validate code", zap.Error(err))
		}
		code := errorBody(err).Error
		middleware.SetErrorCode(c, code)
		c.JSON(status, models.ValidateOtpResponse{Success: false, Error: code})
		return
	}

	c.JSON(http.StatusOK, models.ValidateOtpResponse{Success: true, Profile: profile})
}
