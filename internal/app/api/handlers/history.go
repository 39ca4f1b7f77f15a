package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/service/history"
	"github.com/fatflowers/salesreport/internal/models"
	"github.com/fatflowers/salesreport/pkg/types"
)

type historyListResponse struct {
	History []models.History `json:"history"`
	Total   int64            `json:"total"`
}

// @Summary      List history
// @Description  Returns the user's generated artifacts, newest first.
// @Tags         History
// @Produce      json
// @Param        email query string true "User email"
// @Param        limit query int false "Page size"
// @Param        offset query int false "Page offset"
// @Param        type query string false "Artifact type filter"
// @Success      200  {object}  historyListResponse
// @Router       /history [get]
func ApiListHistory(histories *history.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスが必要です"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		rows, total, err := histories.List(c.Request.Context(), email, c.Query("type"), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "履歴の取得に失敗しました"})
			return
		}
		if rows == nil {
			rows = []models.History{}
		}
		c.JSON(http.StatusOK, historyListResponse{History: rows, Total: total})
	}
}

type saveHistoryRequest struct {
	Email  string `json:"email"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Format string `json:"format"`
	Type   string `json:"type"`
}

// @Summary      Save history
// @Description  Appends one generated artifact to the user's history.
// @Tags         History
// @Accept       json
// @Produce      json
// @Param        request body saveHistoryRequest true "History entry"
// @Success      200  {object}  map[string]any
// @Router       /history [post]
func ApiSaveHistory(histories *history.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveHistoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "必要なデータが不足しています"})
			return
		}

		entry := &models.History{
			Email:  req.Email,
			Input:  req.Input,
			Output: req.Output,
			Format: req.Format,
			Type:   types.ArtifactType(req.Type),
		}
		err := histories.Save(c.Request.Context(), entry)
		if errors.Is(err, history.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "必要なデータが不足しています"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "履歴の保存に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": entry.ID})
	}
}

// @Summary      Delete history
// @Description  Hard-deletes one history entry owned by the given email.
// @Tags         History
// @Produce      json
// @Param        id query int true "Entry ID"
// @Param        email query string true "Owning email"
// @Success      200  {object}  map[string]any
// @Router       /history [delete]
func ApiDeleteHistory(histories *history.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		id, err := strconv.ParseInt(c.Query("id"), 10, 64)
		if email == "" || err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IDとメールアドレスが必要です"})
			return
		}

		err = histories.Delete(c.Request.Context(), id, email)
		if errors.Is(err, history.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "履歴が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "履歴の削除に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func RegisterHistoryRoutes(r gin.IRouter, histories *history.Service) {
	r.GET("/history", ApiListHistory(histories))
	r.POST("/history", ApiSaveHistory(histories))
	r.DELETE("/history", ApiDeleteHistory(histories))
}
