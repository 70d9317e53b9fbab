package handlers

import (
	"net/http"
	"strings"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ConsentHandlers exposes consent submission and the admin verification routes
type ConsentHandlers struct {
	orchestrator *services.ConsentOrchestrator
	verifier     *services.ConsentVerifier
	logger       *logging.SafeLogger
}

// NewConsentHandlers creates the consent handlers
func NewConsentHandlers(orchestrator *services.ConsentOrchestrator, verifier *services.ConsentVerifier, logger *logging.SafeLogger) *ConsentHandlers {
	return &ConsentHandlers{orchestrator: orchestrator, verifier: verifier, logger: logger}
}

// SubmitConsent godoc
// @Summary Registrar consentimiento
// @Description Guarda la firma, actualiza el perfil del visitante y emite un consentimiento con vigencia de 365 días. El PDF y el correo se envían después sin afectar la respuesta.
// @Tags consent
// @Accept json
// @Produce json
// @Param data body models.ConsentSubmission true "Formulario firmado"
// @Success 200 {object} models.ConsentResponse
// @Failure 400 {object} ErrorResponse "Formulario inválido"
// @Failure 500 {object} ErrorResponse "Fallo de almacenamiento"
// @Router /consent [post]
func (h *ConsentHandlers) SubmitConsent(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "SubmitConsent")
	defer span.End()
	span.SetAttributes(attribute.String("operation", "submit_consent"))
	c.Request = c.Request.WithContext(ctx)

	var sub models.ConsentSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		bindError(c, err)
		return
	}
	sub.IPAddress = c.ClientIP()

	consent, err := h.orchestrator.Submit(requestContext(c), sub)
	if err != nil {
		writeError(c, h.logger, "failed to submit consent", err)
		return
	}

	c.JSON(http.StatusOK, models.ConsentResponse{
		Success:     true,
		ConsentID:   consent.ID.Hex(),
		Consecutivo: consent.Consecutivo,
	})
}

// GetConsent godoc
// @Summary Verificar consentimiento
// @Description Devuelve un consentimiento almacenado e indica si sigue vigente (solo administradores)
// @Tags admin
// @Produce json
// @Param id path string true "ID del consentimiento"
// @Security BearerAuth
// @Success 200 {object} models.ConsentVerificationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/consents/{id} [get]
func (h *ConsentHandlers) GetConsent(c *gin.Context) {
	result, err := h.verifier.Verify(requestContext(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "failed to load consent", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSignature godoc
// @Summary Descargar firma
// @Description Devuelve la imagen PNG de una firma almacenada (solo administradores)
// @Tags admin
// @Produce png
// @Param path path string true "Ruta de la firma"
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/signatures/{path} [get]
func (h *ConsentHandlers) GetSignature(c *gin.Context) {
	blobPath := strings.TrimPrefix(c.Param("path"), "/")
	data, err := h.verifier.Signature(requestContext(c), blobPath)
	if err != nil {
		writeError(c, h.logger, "failed to load signature", err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", data)
}
