package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/salesreport/internal/app/api/middleware"
	"github.com/fatflowers/salesreport/internal/app/service/analytics"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/response"
)

// @Summary      Business analytics
// @Description  Returns the overview, user listing, or monthly cohorts, depending on type.
// @Tags         Admin
// @Produce      json
// @Param        type query string false "overview (default), users, or cohort"
// @Success      200  {object}  response.APIResponse[analytics.Overview]
// @Router       /api/admin/analytics [get]
func ApiAdminAnalytics(stats *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		switch c.DefaultQuery("type", "overview") {
		case "overview":
			overview, err := stats.Overview(ctx)
			if err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.OKT(overview))
		case "users":
			users, err := stats.Users(ctx)
			if err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.OKT(users))
		case "cohort":
			cohorts, err := stats.Cohorts(ctx)
			if err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.OKT(cohorts))
		default:
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown type"))
		}
	}
}

func RegisterAdminRoutes(r gin.IRouter, cfg *cfgpkg.Config, stats *analytics.Service) {
	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.Admin.JWTSecret))
	admin.GET("/analytics", ApiAdminAnalytics(stats))
}
