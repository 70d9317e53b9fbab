package handlers

import (
	"net/http"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

// IdentityHandlers answers whether a visitor is already registered
type IdentityHandlers struct {
	resolver *services.IdentityResolver
	logger   *logging.SafeLogger
}

// NewIdentityHandlers creates the identity handlers
func NewIdentityHandlers(resolver *services.IdentityResolver, logger *logging.SafeLogger) *IdentityHandlers {
	return &IdentityHandlers{resolver: resolver, logger: logger}
}

// CheckIdentity godoc
// @Summary Consultar visitante
// @Description Indica si la cédula ya está registrada y devuelve un perfil enmascarado
// @Tags identity
// @Accept json
// @Produce json
// @Param data body models.IdentityCheckRequest true "Cédula"
// @Success 200 {object} models.IdentityCheckResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /identity/check [post]
func (h *IdentityHandlers) CheckIdentity(c *gin.Context) {
	var req models.IdentityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.resolver.Check(requestContext(c), req.Cedula)
	if err != nil {
		writeError(c, h.logger, "failed to check identity", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
