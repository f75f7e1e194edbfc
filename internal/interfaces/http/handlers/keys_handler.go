// Package handlers implements the HTTP endpoints for key management and
// publication.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openjwks/jwksd/internal/application"
	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/errors"
	"github.com/openjwks/jwksd/pkg/logger"
)

// KeysHandler serves the key management endpoints.
type KeysHandler struct {
	keys   *application.KeyService
	logger logger.Logger
}

// NewKeysHandler creates a KeysHandler.
func NewKeysHandler(keys *application.KeyService, log logger.Logger) *KeysHandler {
	return &KeysHandler{
		keys:   keys,
		logger: log.WithComponent("keys_handler"),
	}
}

// createKeyRequest is the body of POST /jwks.
type createKeyRequest struct {
	Alg string `json:"alg" binding:"required"`
}

// keyResponse is the full representation of a single key record, returned on
// creation and on direct fetch. It is the only place private material leaves
// the service.
type keyResponse struct {
	ID                  string     `json:"id"`
	Alg                 string     `json:"alg"`
	Kty                 string     `json:"kty"`
	Crv                 *string    `json:"crv,omitempty"`
	X                   *string    `json:"x,omitempty"`
	Y                   *string    `json:"y,omitempty"`
	N                   *string    `json:"n,omitempty"`
	E                   *string    `json:"e,omitempty"`
	X5c                 *string    `json:"x5c,omitempty"`
	X5t                 *string    `json:"x5t,omitempty"`
	PrivateKey          *string    `json:"private_key,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	PrivateKeyExpiresAt time.Time  `json:"private_key_expires_at"`
	KeyExpiresAt        time.Time  `json:"key_expires_at"`
	DeletedAt           *time.Time `json:"deleted_at,omitempty"`
}

func toKeyResponse(key *models.KeyRecord) keyResponse {
	return keyResponse{
		ID:                  key.ID,
		Alg:                 string(key.Algorithm),
		Kty:                 key.Kty,
		Crv:                 key.Crv,
		X:                   key.X,
		Y:                   key.Y,
		N:                   key.N,
		E:                   key.E,
		X5c:                 key.X5c,
		X5t:                 key.X5t,
		PrivateKey:          key.PrivateKey,
		CreatedAt:           key.CreatedAt,
		PrivateKeyExpiresAt: key.PrivateKeyExpiresAt,
		KeyExpiresAt:        key.KeyExpiresAt,
		DeletedAt:           key.DeletedAt,
	}
}

// CreateKey handles POST /jwks. It generates a key pair for the requested
// algorithm and returns the complete record, private material included.
func (h *KeysHandler) CreateKey(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, errors.ErrInvalidRequest("alg is required"))
		return
	}

	key, err := h.keys.CreateKey(c.Request.Context(), constants.Algorithm(req.Alg))
	if err != nil {
		if errors.CodeOf(err) != errors.CodeUnsupportedAlgorithm {
			h.logger.Error(c.Request.Context(), "key creation failed", err,
				logger.String("alg", req.Alg))
		}
		sendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toKeyResponse(key))
}

// GetKey handles GET /jwks/:id. A key past its signing lifetime answers 410
// so callers can tell a retired key from one that never existed.
func (h *KeysHandler) GetKey(c *gin.Context) {
	key, err := h.keys.GetKey(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, toKeyResponse(key))
}

// ListKeys handles GET /jwks. Soft-deleted records are included only with
// ?include_deleted=true.
func (h *KeysHandler) ListKeys(c *gin.Context) {
	includeDeleted := c.Query("include_deleted") == "true"

	views, err := h.keys.ListKeys(c.Request.Context(), includeDeleted)
	if err != nil {
		h.logger.Error(c.Request.Context(), "key listing failed", err)
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": views})
}

// DeleteKey handles DELETE /jwks/:id. A repeated delete answers 204 as well:
// the end state the caller asked for already holds.
func (h *KeysHandler) DeleteKey(c *gin.Context) {
	err := h.keys.SoftDeleteKey(c.Request.Context(), c.Param("id"))
	if err != nil && !errors.IsAlreadyDeleted(err) {
		sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
