// internal/api/subscription_handler.go
package api

import (
	"net/http"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/repository"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subRepo repository.SubscriptionRepository
}

func NewSubscriptionHandler(subRepo repository.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{subRepo: subRepo}
}

// --- DTOs ---

type PushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

type PushSubscriptionResponse struct {
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Handler Methods ---

// RegisterSubscription godoc
// @Summary Register a web-push subscription
// @Description Stores the browser's push subscription for the authenticated user. Re-registering the same endpoint is an upsert.
// @Tags Push
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} gin.H
// @Failure 400 {object} gin.H "Invalid subscription payload"
// @Router /push/subscriptions [post]
func (h *SubscriptionHandler) RegisterSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req PushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid subscription payload: "+err.Error())
		return
	}

	sub := &domain.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.subRepo.Upsert(c.Request.Context(), sub); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to store subscription.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscription registered."})
}

// ListSubscriptions godoc
// @Summary List the user's registered push subscriptions
// @Tags Push
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PushSubscriptionResponse
// @Router /push/subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	subs, err := h.subRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list subscriptions.")
		return
	}

	resp := make([]PushSubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		resp = append(resp, PushSubscriptionResponse{Endpoint: s.Endpoint, CreatedAt: s.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

// UnregisterSubscription godoc
// @Summary Remove a web-push subscription
// @Tags Push
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H
// @Router /push/subscriptions [delete]
func (h *SubscriptionHandler) UnregisterSubscription(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid payload: endpoint is required.")
		return
	}

	if err := h.subRepo.DeleteByEndpoint(c.Request.Context(), req.Endpoint); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to remove subscription.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription removed."})
}
