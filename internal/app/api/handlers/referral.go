package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/service/referral"
	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
)

type referralResponse struct {
	Success      bool              `json:"success"`
	ReferralCode string            `json:"referralCode"`
	ReferralLink string            `json:"referralLink"`
	Referrals    []models.Referral `json:"referrals,omitempty"`
	Totals       *referral.Totals  `json:"totals,omitempty"`
}

// @Summary      Referral code and history
// @Description  Returns the user's referral code and link; action=history adds the ledger.
// @Tags         Referral
// @Produce      json
// @Param        email query string true "User email"
// @Param        action query string false "Set to history for the full ledger"
// @Success      200  {object}  referralResponse
// @Router       /referral [get]
func ApiGetReferral(referrals *referral.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}

		ctx := c.Request.Context()
		code, err := referrals.Code(ctx, email)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		resp := referralResponse{
			Success:      true,
			ReferralCode: code,
			ReferralLink: referrals.Link(code),
		}
		if c.Query("action") == "history" {
			rows, totals, err := referrals.History(ctx, email)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			resp.Referrals = rows
			resp.Totals = totals
		}
		c.JSON(http.StatusOK, resp)
	}
}

type validateReferralRequest struct {
	Code string `json:"code"`
}

// @Summary      Validate a referral code
// @Tags         Referral
// @Accept       json
// @Produce      json
// @Param        request body validateReferralRequest true "Code to validate"
// @Success      200  {object}  map[string]any
// @Router       /referral [post]
func ApiValidateReferral(referrals *referral.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validateReferralRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Referral code is required"})
			return
		}

		_, err := referrals.Validate(c.Request.Context(), req.Code)
		if err != nil && !errors.Is(err, referral.ErrInvalidCode) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		valid := err == nil
		message := "紹介コードが見つかりません"
		if valid {
			message = "有効な紹介コードです"
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "valid": valid, "message": message})
	}
}

func RegisterReferralRoutes(r gin.IRouter, referrals *referral.Service) {
	r.GET("/referral", ApiGetReferral(referrals))
	r.POST("/referral", ApiValidateReferral(referrals))
}
