package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/service/generation"
	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/pkg/types"
)

type generateRequest struct {
	Email        string `json:"email"`
	Input        string `json:"input"`
	Format       string `json:"format"`
	CustomPrompt string `json:"customPrompt"`
}

type generateResponse struct {
	Report string `json:"report"`
}

// @Summary      Generate a daily report
// @Description  Turns free-text meeting notes into a formatted report. Custom templates require an upgraded plan.
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request body generateRequest true "Generation request"
// @Success      200  {object}  generateResponse
// @Router       /generate [post]
func ApiGenerate(gen *generation.Service, users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "商談メモを入力してください"})
			return
		}

		plan := types.PlanFree
		if req.Email != "" {
			if user, err := users.GetByEmail(c.Request.Context(), req.Email); err == nil {
				plan = user.Plan
			}
		}

		report, err := gen.Report(c.Request.Context(), req.Input, req.Format, req.CustomPrompt, plan)
		switch {
		case errors.Is(err, generation.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "商談メモを入力してください"})
		case errors.Is(err, generation.ErrCustomTemplateNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": "カスタムフォーマットはProプラン以上で利用できます"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "日報の生成に失敗しました。もう一度お試しください。"})
		default:
			c.JSON(http.StatusOK, generateResponse{Report: report})
		}
	}
}

type coachingRequest struct {
	Transcript string `json:"transcript"`
}

// @Summary      Score a sales transcript
// @Description  Returns the structured coaching score with a canned tip for the weakest area.
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request body coachingRequest true "Coaching request"
// @Success      200  {object}  generation.CoachingResult
// @Router       /coaching [post]
func ApiCoaching(gen *generation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req coachingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "商談内容を入力してください"})
			return
		}

		result, err := gen.Coaching(c.Request.Context(), req.Transcript)
		switch {
		case errors.Is(err, generation.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "商談内容を入力してください"})
		case errors.Is(err, generation.ErrAnalysisParse):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "分析結果の解析に失敗しました"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "分析に失敗しました。もう一度お試しください。"})
		default:
			c.JSON(http.StatusOK, result)
		}
	}
}

type weeklyReportRequest struct {
	DailyReports []generation.DailyReport `json:"dailyReports"`
}

type weeklyReportResponse struct {
	WeeklyReport string `json:"weeklyReport"`
}

// @Summary      Generate a weekly report
// @Description  Condenses a week of daily reports into one manager-facing summary.
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request body weeklyReportRequest true "Weekly report request"
// @Success      200  {object}  weeklyReportResponse
// @Router       /weekly-report [post]
func ApiWeeklyReport(gen *generation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req weeklyReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "日報データが必要です"})
			return
		}

		report, err := gen.Weekly(c.Request.Context(), req.DailyReports)
		switch {
		case errors.Is(err, generation.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "日報データが必要です"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "週次レポートの生成に失敗しました。もう一度お試しください。"})
		default:
			c.JSON(http.StatusOK, weeklyReportResponse{WeeklyReport: report})
		}
	}
}

func RegisterGenerationRoutes(r gin.IRouter, gen *generation.Service, users *store.UserStore) {
	r.POST("/generate", ApiGenerate(gen, users))
	r.POST("/coaching", ApiCoaching(gen))
	r.POST("/weekly-report", ApiWeeklyReport(gen))
}
