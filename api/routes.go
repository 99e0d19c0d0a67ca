package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailadmin/api/handlers"
	"github.com/customeros/mailadmin/api/middleware"
	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/dto"
	"github.com/customeros/mailadmin/internal/tracing"
)

const AppSource = "mailadmin"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, h *handlers.APIHandlers, cfg *config.AppConfig) {
	if h == nil {
		panic("Handlers cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	api := r.Group("/api")
	api.Use(middleware.RequestIdMiddleware())
	api.Use(middleware.BodyLimitMiddleware(cfg.MaxBodyMB << 20))
	api.Use(middleware.CustomContextMiddleware(AppSource))
	api.Use(middleware.TracingMiddleware())
	{
		api.GET("/health", h.Health.HealthCheck())

		auth := api.Group("/auth", middleware.RequireCredentials())
		{
			auth.POST("/login", h.Auth.Login())
			auth.POST("/logout", h.Auth.Logout())
		}

		profile := api.Group("/profile")
		{
			profile.GET("", h.Profile.GetProfile())
			profile.POST("", middleware.RequireCredentials(), h.Profile.SaveProfile())
			profile.POST("/signature", middleware.RequireCredentials(), h.Profile.UploadSignature())
			profile.GET("/signature/:email", h.Profile.GetSignature())
		}

		api.GET("/emails/folders", h.Emails.Folders())

		emails := api.Group("/emails", middleware.RequireCredentials())
		{
			emails.POST("/send", h.Emails.Send())
			emails.POST("/save-draft", h.Emails.SaveDraft())
			emails.POST("/reply", h.Emails.Reply())
			emails.POST("/move", h.Emails.MoveMessage())
			emails.POST("/stats", h.Emails.Stats())
			emails.POST("/clear-cache", h.Emails.ClearCache())

			emails.POST("/:folder", h.Emails.ListFolder())
			emails.POST("/:folder/:uid", h.Emails.OpenMessage())
			emails.DELETE("/:folder/:uid", h.Emails.DeleteMessage())
			emails.POST("/:folder/:uid/attachment/:index", h.Emails.DownloadAttachment())
		}
	}

	if cfg.StaticDir != "" {
		files := http.FileServer(gin.Dir(cfg.StaticDir, false))
		r.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, dto.ErrorResponse{Success: false, Error: "route not found"})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}
}
