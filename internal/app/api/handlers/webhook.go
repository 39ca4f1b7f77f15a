package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/service/account"
)

// @Summary      Purchase webhook
// @Description  Payment-platform callback recording a purchase and upgrading the plan.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        request body account.PurchasePayload true "Purchase payload"
// @Success      200  {object}  map[string]any
// @Router       /webhook/purchase [post]
func ApiPurchaseWebhook(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload account.PurchasePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		plan, err := accounts.HandlePurchase(c.Request.Context(), &payload)
		if errors.Is(err, account.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Purchase recorded", "plan": plan})
	}
}

// @Summary      Cancel webhook
// @Description  Payment-platform callback moving the user back to the free plan.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        request body account.CancelPayload true "Cancel payload"
// @Success      200  {object}  map[string]any
// @Router       /webhook/cancel [post]
func ApiCancelWebhook(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload account.CancelPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		err := accounts.HandleCancel(c.Request.Context(), &payload)
		if errors.Is(err, account.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subscription cancelled"})
	}
}

func webhookHealth(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "endpoint": endpoint})
	}
}

func RegisterWebhookRoutes(r gin.IRouter, accounts *account.Service) {
	r.POST("/webhook/purchase", ApiPurchaseWebhook(accounts))
	r.GET("/webhook/purchase", webhookHealth("purchase webhook"))
	r.POST("/webhook/cancel", ApiCancelWebhook(accounts))
	r.GET("/webhook/cancel", webhookHealth("cancel webhook"))
}
