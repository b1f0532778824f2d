package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"startup-os-backend/internal/models"
)

// Subscriptions is satisfied by *services.SubscriptionService.
type Subscriptions interface {
	Status(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpgradeToPremium(ctx context.Context, userID uuid.UUID, promo string) (*models.Profile, error)
	DowngradeToFreemium(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Now() time.Time
}

type SubscriptionHandler struct {
	subs Subscriptions
}

func NewSubscriptionHandler(subs Subscriptions) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

// GetSubscription godoc
// @Summary     Get the caller's subscription
// @Tags        subscription
// @Produce     json
// @Success     200 {object} models.SubscriptionResponse
// @Security    Bearer
// @Router      /api/subscription [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.subs.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSubscriptionResponse(profile, h.subs.Now()))
}

// Upgrade godoc
// @Summary     Upgrade to premium
// @Description Grants 30 days of premium, or 7 days with the launch promo code
// @Tags        subscription
// @Accept      json
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       request body models.UpgradeRequest false "Promo code"
// @Success     200 {object} models.SubscriptionResponse
// @Security    Bearer
// @Router      /api/subscription/upgrade [post]
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	// The promo code is optional, so an empty body is fine.
	var req models.UpgradeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
			return
		}
	}

	profile, err := h.subs.UpgradeToPremium(c.Request.Context(), userID, req.PromoCode)
	h.respond(c, profile, err)
}

// Downgrade godoc
// @Summary     Downgrade to freemium
// @Tags        subscription
// @Produce     json
// @Success     200 {object} models.SubscriptionResponse
// @Security    Bearer
// @Router      /api/subscription/downgrade [post]
func (h *SubscriptionHandler) Downgrade(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.subs.DowngradeToFreemium(c.Request.Context(), userID)
	h.respond(c, profile, err)
}

func (h *SubscriptionHandler) respond(c *gin.Context, profile *models.Profile, err error) {
	if isFormPost(c) {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		redirectBack(c, "/dashboard/billing", msg)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSubscriptionResponse(profile, h.subs.Now()))
}
