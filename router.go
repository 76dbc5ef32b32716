package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/controllers"
	"github.com/harekrishna1602/anvesha-2.0/metrics"
	"github.com/harekrishna1602/anvesha-2.0/middleware"
	"github.com/harekrishna1602/anvesha-2.0/services"
	"github.com/harekrishna1602/anvesha-2.0/session"
	"github.com/harekrishna1602/anvesha-2.0/socket"
)

// App holds everything the HTTP layer needs
type App struct {
	DB     *gorm.DB
	Logger *slog.Logger
	Auth   gin.HandlerFunc

	MetricsEnabled bool
	CORSOrigins    []string

	Summaries *services.SummaryService

	Orders        *controllers.OrderController
	Customers     *controllers.CustomerController
	Products      *controllers.ProductController
	RawMaterials  *controllers.RawMaterialController
	Assets        *controllers.AssetController
	Maintenance   *controllers.MaintenanceController
	Notifications *controllers.NotificationController
	Dashboard     *controllers.DashboardController
}

func newApp(db *gorm.DB, logger *slog.Logger, storage services.ObjectStorage, events services.EventPublisher, hub *socket.Hub, tracker *session.Tracker) *App {
	customers := services.NewCustomerService(db)
	products := services.NewProductService(db)
	materials := services.NewRawMaterialService(db)
	assets := services.NewAssetService(db)
	notifications := services.NewNotificationService(db)

	gateway := services.NewGormOrderGateway(db)
	orders := services.NewOrderService(gateway, customers, products, notifications, events)
	exports := services.NewExportService(gateway, storage)
	maintenance := services.NewMaintenanceService(db, assets, services.NewGormChecklistStore(db))
	summaries := services.NewSummaryService(gateway, materials, notifications)

	return &App{
		DB:             db,
		Logger:         logger,
		MetricsEnabled: true,
		CORSOrigins:    []string{"*"},
		Summaries:      summaries,
		Orders:         controllers.NewOrderController(orders, exports),
		Customers:      controllers.NewCustomerController(customers),
		Products:       controllers.NewProductController(products),
		RawMaterials:   controllers.NewRawMaterialController(materials),
		Assets:         controllers.NewAssetController(assets),
		Maintenance:    controllers.NewMaintenanceController(maintenance),
		Notifications:  controllers.NewNotificationController(notifications),
		Dashboard:      controllers.NewDashboardController(summaries, hub, tracker),
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:   []string{middleware.RequestIDHeader},
		AllowWebSockets: true,
		MaxAge:          12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// setupRouter registers every route on a new engine
func setupRouter(app *App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(app.CORSOrigins)))
	router.Use(middleware.RequestLogger(app.Logger))
	if app.MetricsEnabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(app.DB))
	}

	api := v1.Group("")
	api.Use(app.Auth)
	{
		api.POST("/orders", app.Orders.CreateOrder)
		api.GET("/orders", app.Orders.ListOrders)
		api.GET("/orders/recent", app.Orders.RecentOrders)
		api.GET("/orders/count", app.Orders.CountOrders)
		api.POST("/orders/export", app.Orders.ExportOrders)
		api.POST("/orders/batch/complete", app.Orders.BatchComplete)
		api.POST("/orders/batch/status", app.Orders.BatchUpdateStatus)
		api.GET("/orders/:id", app.Orders.GetOrder)
		api.PUT("/orders/:id", app.Orders.UpdateOrder)
		api.PUT("/orders/:id/items", app.Orders.ReplaceOrderItems)
		api.DELETE("/orders/:id", app.Orders.DeleteOrder)

		api.POST("/customers", app.Customers.CreateCustomer)
		api.GET("/customers", app.Customers.ListCustomers)
		api.GET("/customers/:id", app.Customers.GetCustomer)
		api.PUT("/customers/:id", app.Customers.UpdateCustomer)
		api.DELETE("/customers/:id", app.Customers.DeleteCustomer)

		api.POST("/products", app.Products.CreateProduct)
		api.GET("/products", app.Products.ListProducts)
		api.GET("/products/:id", app.Products.GetProduct)
		api.PUT("/products/:id", app.Products.UpdateProduct)
		api.DELETE("/products/:id", app.Products.DeleteProduct)

		api.POST("/raw-materials", app.RawMaterials.CreateRawMaterial)
		api.GET("/raw-materials", app.RawMaterials.ListRawMaterials)
		api.GET("/raw-materials/low-stock/count", app.RawMaterials.LowStockCount)
		api.GET("/raw-materials/:id", app.RawMaterials.GetRawMaterial)
		api.PUT("/raw-materials/:id", app.RawMaterials.UpdateRawMaterial)
		api.DELETE("/raw-materials/:id", app.RawMaterials.DeleteRawMaterial)

		api.POST("/assets", app.Assets.CreateAsset)
		api.GET("/assets", app.Assets.ListAssets)
		api.GET("/assets/:id", app.Assets.GetAsset)
		api.PUT("/assets/:id", app.Assets.UpdateAsset)
		api.DELETE("/assets/:id", app.Assets.DeleteAsset)

		api.POST("/maintenance-tasks", app.Maintenance.CreateTask)
		api.GET("/maintenance-tasks", app.Maintenance.ListTasks)
		api.GET("/maintenance-tasks/calendar", app.Maintenance.Calendar)
		api.GET("/maintenance-tasks/:id", app.Maintenance.GetTask)
		api.PUT("/maintenance-tasks/:id", app.Maintenance.UpdateTask)
		api.DELETE("/maintenance-tasks/:id", app.Maintenance.DeleteTask)

		api.GET("/notifications", app.Notifications.ListNotifications)
		api.GET("/notifications/unread/count", app.Notifications.UnreadCount)
		api.PUT("/notifications/:id/read", app.Notifications.MarkRead)

		api.GET("/dashboard/summary", app.Dashboard.GetSummary)
		api.GET("/ws/summary", app.Dashboard.SummarySocket)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Shop floor API is running",
	})
}

// databaseStatus checks database connectivity and lists the migrated tables
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Database not configured",
				},
			})
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		tables, err := db.Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
