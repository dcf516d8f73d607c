package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-progress-api/internal/middleware"
	"github.com/noah-isme/course-progress-api/internal/models"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth      *AuthHandler
	Records   *RecordHandler
	Dashboard *DashboardHandler
	Mentors   *MentorHandler
	Chat      *ChatHandler
	Uploads   *UploadHandler
	Metrics   *MetricsHandler
}

// RegisterRoutes mounts the API under api. authenticate guards every route except login;
// the assistants, uploads and ops stats additionally require the admin role.
func RegisterRoutes(root gin.IRouter, api gin.IRouter, h Handlers, authenticate gin.HandlerFunc) {
	root.GET("/health", h.Metrics.Health)
	root.GET("/ready", h.Metrics.Ready)
	root.GET("/metrics", h.Metrics.Prometheus)

	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(authenticate)
	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	secured.GET("/courses", h.Records.Courses)
	secured.GET("/students", h.Records.Students)

	dashboard := secured.Group("/dashboard")
	dashboard.GET("/summary", h.Dashboard.Summary)
	dashboard.GET("/weekly", h.Dashboard.Weekly)
	dashboard.GET("/registration", h.Dashboard.Registration)
	dashboard.GET("/average-score", h.Dashboard.AverageScore)
	dashboard.GET("/engagement", h.Dashboard.Engagement)
	dashboard.GET("/enrollment-stats", h.Dashboard.EnrollmentStats)
	dashboard.GET("/export", h.Dashboard.Export)

	secured.GET("/mentors", h.Mentors.Groups)
	secured.GET("/mentors/progress", h.Mentors.Progress)

	admin := secured.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/chat", h.Chat.Send)
	admin.GET("/chat/history", h.Chat.History)
	admin.DELETE("/chat/history", h.Chat.Clear)
	admin.POST("/newChatBot/generate", h.Chat.GenerateSQL)
	admin.GET("/newChatBot/history", h.Chat.SQLHistory)
	admin.DELETE("/newChatBot/history", h.Chat.ClearSQL)
	admin.POST("/uploads/:kind", h.Uploads.Upload)
	admin.GET("/ops/stats", h.Metrics.Stats)
}
