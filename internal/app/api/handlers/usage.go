package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/service/account"
	"github.com/fatflowers/salesreport/internal/app/service/entitlement"
	"github.com/fatflowers/salesreport/internal/app/service/gamification"
)

type usageResponse struct {
	Success       bool   `json:"success"`
	UsageCount    int    `json:"usageCount"`
	Limit         int    `json:"limit"`
	Remaining     int    `json:"remaining"`
	CanUse        bool   `json:"canUse"`
	Streak        int    `json:"streak,omitempty"`
	SalesScore    int    `json:"salesScore,omitempty"`
	ReferralCount int    `json:"referralCount,omitempty"`
	Message       string `json:"message,omitempty"`
}

// @Summary      Usage snapshot
// @Description  Returns the monthly usage, quota, and gamification stats for one user.
// @Tags         Usage
// @Produce      json
// @Param        email query string true "User email"
// @Success      200  {object}  usageResponse
// @Router       /usage [get]
func ApiGetUsage(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスが必要です"})
			return
		}

		dash, err := accounts.Dashboard(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "使用回数の確認に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, usageResponse{
			Success:       true,
			UsageCount:    dash.UsageCount,
			Limit:         dash.Limit,
			Remaining:     dash.Remaining,
			CanUse:        dash.CanUse,
			Streak:        dash.StreakCount,
			SalesScore:    dash.SalesScore,
			ReferralCount: dash.ReferralCount,
		})
	}
}

type incrementUsageRequest struct {
	Email string `json:"email"`
}

// @Summary      Charge one billable action
// @Description  Increments the monthly usage counter and updates streak and score. Refused when the free quota is exhausted.
// @Tags         Usage
// @Accept       json
// @Produce      json
// @Param        request body incrementUsageRequest true "Increment request"
// @Success      200  {object}  usageResponse
// @Failure      403  {object}  usageResponse
// @Router       /usage [post]
func ApiIncrementUsage(entitlements *entitlement.Service, streaks *gamification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req incrementUsageRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスが必要です"})
			return
		}

		ctx := c.Request.Context()
		limit := entitlements.FreeLimit()

		count, err := entitlements.IncrementUsage(ctx, req.Email)
		if errors.Is(err, entitlement.ErrLimitReached) {
			current, _ := entitlements.GetUsageCount(ctx, req.Email)
			c.JSON(http.StatusForbidden, usageResponse{
				Success:    false,
				UsageCount: current,
				Limit:      limit,
				Remaining:  0,
				CanUse:     false,
				Message:    "今月の無料利用回数を超えました。アップグレードしてください。",
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "使用回数の更新に失敗しました"})
			return
		}

		touch, err := streaks.Touch(ctx, req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "使用回数の更新に失敗しました"})
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		canUse, _ := entitlements.CanUse(ctx, req.Email)
		c.JSON(http.StatusOK, usageResponse{
			Success:    true,
			UsageCount: count,
			Limit:      limit,
			Remaining:  remaining,
			CanUse:     canUse,
			Streak:     touch.Streak,
			SalesScore: touch.Score,
		})
	}
}

func RegisterUsageRoutes(r gin.IRouter, accounts *account.Service, entitlements *entitlement.Service, streaks *gamification.Service) {
	r.GET("/usage", ApiGetUsage(accounts))
	r.POST("/usage", ApiIncrementUsage(entitlements, streaks))
}
