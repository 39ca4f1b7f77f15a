package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/service/verification"
	"github.com/fatflowers/salesreport/internal/app/store"
)

type verifyRequest struct {
	Email  string `json:"email"`
	Code   string `json:"code"`
	Action string `json:"action"`
}

// @Summary      Send a verification code
// @Description  Issues a fresh six-digit code and delivers it to the email.
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        request body verifyRequest true "Send request (action must be send)"
// @Success      200  {object}  map[string]any
// @Router       /verify [post]
func ApiSendVerification(verifications *verification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}
		if req.Action != "send" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
			return
		}

		err := verifications.Send(c.Request.Context(), req.Email)
		if errors.Is(err, verification.ErrResendCooldown) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Verification code was sent recently"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent"})
	}
}

// @Summary      Confirm a verification code
// @Description  Validates the code; expiry is reported distinctly from a mismatch.
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        request body verifyRequest true "Confirm request"
// @Success      200  {object}  map[string]any
// @Router       /verify [put]
func ApiConfirmVerification(verifications *verification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and code are required"})
			return
		}

		err := verifications.Confirm(c.Request.Context(), req.Email, req.Code)
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, verification.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code expired"})
		case errors.Is(err, verification.ErrCodeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		case errors.Is(err, verification.ErrNoCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No verification code outstanding"})
		case errors.Is(err, verification.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many failed attempts, request a new code"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully"})
		}
	}
}

func RegisterVerificationRoutes(r gin.IRouter, verifications *verification.Service) {
	r.POST("/verify", ApiSendVerification(verifications))
	r.PUT("/verify", ApiConfirmVerification(verifications))
}
