package router

import (
	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/config"
	"github.com/grandcafe/floorplan/controllers"
	"github.com/grandcafe/floorplan/floorhub"
	"github.com/grandcafe/floorplan/metrics"
	"github.com/grandcafe/floorplan/middlewares"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, hub *floorhub.Hub, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if cfg.RateLimitPerSecond > 0 {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitPerSecond*2).RateLimit())
	}

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, hub, m)
	tableCtrl.IgnoreInactive = cfg.IgnoreInactiveTables
	sectionCtrl := controllers.NewFloorSectionController(db)
	qrCtrl := controllers.NewQRController(db, cfg.AppBaseURL)
	notificationCtrl := controllers.NewNotificationController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(middlewares.StaffRoles...))

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/users", middlewares.RequireRoles("admin"), userCtrl.GetAllUsers)

	manager := middlewares.RequireRoles(middlewares.ManagerRoles...)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/stats", tableCtrl.GetTableStats)
	auth.GET("/tables/qr-pdf", manager, qrCtrl.ExportQRPDF)
	auth.POST("/tables", manager, tableCtrl.CreateTable)
	auth.PUT("/tables", manager, tableCtrl.BulkUpdateTables)
	auth.POST("/tables/qr", manager, qrCtrl.GenerateAllQR)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:table_id", manager, tableCtrl.UpdateTable)
	auth.DELETE("/tables/:table_id", manager, tableCtrl.DeleteTable)
	auth.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	auth.POST("/tables/:table_id/move", manager, tableCtrl.MoveTable)
	auth.PATCH("/tables/:table_id/clean", tableCtrl.MarkTableClean)
	auth.POST("/tables/:table_id/qr", manager, qrCtrl.GenerateQR)
	auth.GET("/tables/:table_id/qr-image", qrCtrl.QRImage)

	// FLOOR SECTIONS
	auth.GET("/floor-sections", sectionCtrl.GetAllSections)
	auth.POST("/floor-sections", manager, sectionCtrl.CreateSection)
	auth.PATCH("/floor-sections/:section_id", manager, sectionCtrl.UpdateSection)
	auth.DELETE("/floor-sections/:section_id", manager, sectionCtrl.DeleteSection)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetMyNotifications)
	auth.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/floor", controllers.FloorHubHandler(hub))
	}

	return r
}
