// Package handler exposes conversion ingestion over HTTP: the webhook
// endpoint external systems deliver into, and API key management.
package handler

import (
	"net/http"

	"salesops_backend/internal/http/response"
	"salesops_backend/internal/ingestion/repository"
	"salesops_backend/internal/ingestion/service"
	"salesops_backend/internal/ingestion/transport"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/httpkit"
	"salesops_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextAccountIDKey = "webhookAccountID"

// Handler serves the ingestion endpoints.
type Handler struct {
	svc  *service.Service
	repo *repository.Repository
	val  *validator.Validator
}

// New creates a new ingestion handler.
func New(svc *service.Service, repo *repository.Repository, val *validator.Validator) *Handler {
	return &Handler{svc: svc, repo: repo, val: val}
}

// APIKeyAuth validates the X-Webhook-API-Key header and sets the account
// context for downstream handlers.
func APIKeyAuth(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Webhook-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		key, err := repo.GetAPIKeyByHash(c.Request.Context(), repository.HashKey(apiKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(contextAccountIDKey, key.AccountID)
		c.Next()
	}
}

// RegisterWebhookRoutes mounts the externally-delivered routes.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/conversions", h.postConversion)
}

// RegisterKeyRoutes mounts API key management on the authenticated API.
func (h *Handler) RegisterKeyRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.createAPIKey)
}

// postConversion ingests one conversion delivery and reports whether a dial
// was claimed for it.
func (h *Handler) postConversion(c *gin.Context) {
	accountID, ok := c.Value(contextAccountIDKey).(uuid.UUID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing account context"})
		return
	}

	var req transport.ConversionWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	result, err := h.svc.ProcessConversion(c.Request.Context(), accountID, req.ToConversion(), req.DeliveryID)
	if err != nil {
		response.FromError(c, err, apperr.KindInternal)
		return
	}

	resp := transport.ConversionWebhookResponse{
		ClaimedDialID: result.ClaimedDialID,
		Duplicate:     result.Duplicate,
	}
	if !result.Duplicate {
		resp.ConversionID = &result.ConversionID
	}
	response.JSON(c, http.StatusAccepted, resp)
}

// createAPIKey issues a new webhook API key for the caller's account. The
// plaintext key appears in this response only.
func (h *Handler) createAPIKey(c *gin.Context) {
	accountID, ok := c.Value(httpkit.ContextAccountIDKey).(uuid.UUID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account context required"})
		return
	}

	var req transport.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	plaintext, hash, prefix, err := repository.GenerateAPIKey()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to generate key", nil)
		return
	}

	key, err := h.repo.CreateAPIKey(c.Request.Context(), accountID, req.Name, hash, prefix)
	if err != nil {
		response.FromError(c, err, apperr.KindInternal)
		return
	}

	response.JSON(c, http.StatusCreated, transport.APIKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		KeyPrefix: key.KeyPrefix,
		Key:       plaintext,
		CreatedAt: key.CreatedAt,
	})
}
