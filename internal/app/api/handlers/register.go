package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/service/account"
)

type registerRequest struct {
	Email        string `json:"email"`
	Source       string `json:"source"`
	ReferralCode string `json:"referralCode"`
}

type registerResponse struct {
	Success           bool   `json:"success"`
	IsNew             bool   `json:"isNew"`
	UsageCount        int    `json:"usageCount"`
	NeedsVerification bool   `json:"needsVerification"`
	Message           string `json:"message"`
}

// @Summary      Register a user
// @Description  Creates the user on first call; later calls are a cheap welcome-back.
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request body registerRequest true "Registration request"
// @Success      200  {object}  registerResponse
// @Router       /register [post]
func ApiRegister(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "有効なメールアドレスを入力してください"})
			return
		}

		result, err := accounts.Register(c.Request.Context(), req.Email, req.Source, req.ReferralCode)
		if errors.Is(err, account.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "有効なメールアドレスを入力してください"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録に失敗しました。もう一度お試しください。"})
			return
		}

		message := "おかえりなさい！"
		if result.IsNew {
			message = "メールアドレスを登録しました！"
		}
		c.JSON(http.StatusOK, registerResponse{
			Success:           true,
			IsNew:             result.IsNew,
			UsageCount:        result.UsageCount,
			NeedsVerification: result.NeedsVerification,
			Message:           message,
		})
	}
}

func RegisterAccountRoutes(r gin.IRouter, accounts *account.Service) {
	r.POST("/register", ApiRegister(accounts))
}
