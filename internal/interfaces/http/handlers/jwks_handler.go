package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openjwks/jwksd/internal/application"
	"github.com/openjwks/jwksd/pkg/logger"
)

// JwksHandler serves the published key set.
type JwksHandler struct {
	keys   *application.KeyService
	logger logger.Logger
}

// NewJwksHandler creates a JwksHandler.
func NewJwksHandler(keys *application.KeyService, log logger.Logger) *JwksHandler {
	return &JwksHandler{
		keys:   keys,
		logger: log.WithComponent("jwks_handler"),
	}
}

// GetJwks handles GET /.well-known/jwks.json. The document is pre-marshaled
// by the application layer so every consumer sees byte-identical output.
func (h *JwksHandler) GetJwks(c *gin.Context) {
	doc, err := h.keys.GetPublishedSet(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "published set build failed", err)
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", doc)
}
