package handlers

import (
	"realestate-hub/internal/auth"
	"realestate-hub/internal/cleanup"
	"realestate-hub/internal/config"
	"realestate-hub/internal/database"
	"realestate-hub/internal/middleware"
	"realestate-hub/internal/ratelimit"
	"realestate-hub/internal/snapshot"
	"realestate-hub/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the routes need. Search, Scheduler and Media are
// optional and must be left as untyped nil when the service is off.
type Deps struct {
	Config    *config.Config
	DB        *database.GormDB
	Auth      *auth.Service
	Search    Searcher
	Snapshots *snapshot.Service
	Cleanup   *cleanup.Service
	Scheduler MaintenanceRunner
	Stats     *stats.Service
	Media     MediaStore
	Limiter   *ratelimit.RateLimiter
	Logger    *zap.Logger
}

// RegisterRoutes mounts the identity gate, the JSON API and the gated pages on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	cookie := d.Config.Auth.CookieName

	pages := NewPageHandler(d.DB, d.Logger)
	properties := NewPropertyHandler(d.DB, d.Search, d.Snapshots, d.Logger)
	leads := NewLeadsHandler(d.DB, d.Logger)
	favorites := NewFavoriteHandler(d.DB, d.Logger)
	authHandler := NewAuthHandler(d.Auth, d.Config.Auth, d.Logger)
	agent := NewAgentHandler(d.DB, d.Stats, d.Logger)
	mediaHandler := NewMediaHandler(d.Media, properties, d.DB, d.Logger)
	admin := NewAdminHandler(AdminDeps{
		DB:            d.DB,
		Auth:          d.Auth,
		Stats:         d.Stats,
		Scheduler:     d.Scheduler,
		Snapshots:     d.Snapshots,
		Cleanup:       d.Cleanup,
		Limiter:       d.Limiter,
		RetentionDays: d.Config.Scheduler.RetentionDays,
		Logger:        d.Logger,
	})

	r.Use(middleware.Identity(d.Auth, cookie, d.Logger))

	r.GET("/health", pages.Health)
	r.GET("/", pages.Home)
	r.GET("/media/:fileID", mediaHandler.Download)

	api := r.Group("/api")
	{
		api.GET("/properties", properties.List)
		api.GET("/properties/:id", properties.Get)
		api.GET("/search", properties.Search)

		writer := api.Group("", middleware.RequireAPIRole(canListProperties))
		writer.POST("/properties", properties.Create)
		writer.PUT("/properties/:id", properties.Update)
		writer.PATCH("/properties/:id/status", properties.UpdateStatus)
		writer.DELETE("/properties/:id", properties.Delete)
		writer.POST("/properties/:id/media", mediaHandler.Upload)

		forms := api.Group("", middleware.RateLimit(d.Limiter))
		forms.POST("/properties/:id/inquiries", leads.CreateInquiry)
		forms.POST("/properties/:id/visits", leads.CreateVisit)
		forms.POST("/properties/:id/leads", leads.CreateLead)

		fav := api.Group("/favorites", middleware.RequireAPIUser())
		fav.GET("", favorites.List)
		fav.GET("/:propertyId", favorites.Status)
		fav.POST("/:propertyId", favorites.Add)
		fav.DELETE("/:propertyId", favorites.Remove)
		fav.POST("/:propertyId/toggle", favorites.Toggle)

		authAPI := api.Group("/auth")
		authAPI.POST("/register", middleware.RateLimit(d.Limiter), authHandler.Register)
		authAPI.POST("/login", middleware.RateLimit(d.Limiter), authHandler.Login)
		authAPI.POST("/logout", authHandler.Logout)
		authAPI.GET("/session", authHandler.Session)
	}

	authPages := r.Group("/auth", middleware.RedirectIfAuthenticated())
	authPages.GET("/login", pages.Login)
	authPages.GET("/register", pages.Register)

	r.GET("/favoritos", middleware.RequireSession(), pages.Favorites)
	r.GET("/admin", middleware.RequireAdminPage(), pages.Admin)

	agente := r.Group("/agente", middleware.RequireAgent())
	{
		agente.GET("", agent.Dashboard)
		agente.PATCH("/leads/:id/status", agent.UpdateLeadStatus)
		agente.PATCH("/inquiries/:id/status", agent.UpdateInquiryStatus)
		agente.PATCH("/visits/:id/status", agent.UpdateVisitStatus)
		agente.GET("/perfil", agent.Profile)
		agente.PUT("/perfil", agent.UpdateProfile)
	}

	dashboard := r.Group("/dashboard", middleware.RequireAdminPage())
	{
		dashboard.GET("", admin.GetStats)
		dashboard.GET("/users", admin.ListUsers)
		dashboard.POST("/users", admin.CreateUser)
		dashboard.PATCH("/users/:id", admin.UpdateUser)
		dashboard.GET("/properties", admin.ListProperties)
		dashboard.GET("/properties/:id/history", admin.GetPropertyHistory)
		dashboard.GET("/changes", admin.GetRecentChanges)
		dashboard.GET("/city-stats", admin.GetCityStats)
		dashboard.GET("/price-distribution", admin.GetPriceDistribution)
		dashboard.POST("/cleanup/run", admin.RunCleanup)
		dashboard.GET("/cleanup/logs", admin.GetDeleteLogs)
		dashboard.POST("/maintenance/run", admin.TriggerMaintenance)
		dashboard.GET("/ratelimit/stats", admin.GetRateLimitStats)
	}
}
