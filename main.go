package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/handler"
	"github.com/alvarogf/pyg-dashboard/service"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Initialize configuration
	cfg := config.LoadConfig()

	// Load the KPI pattern registry (embedded default or override file)
	registry, err := config.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		log.Fatalf("Failed to load KPI registry: %v", err)
	}
	log.Infof("KPI registry loaded: %d KPIs, years %v", len(registry.KPIs), registry.Years)

	// Initialize the dashboard session service
	dashboard := service.NewDashboard(registry, cfg.CompanyName)

	// Initialize handler layer
	statementHandler := handler.NewStatementHandler(dashboard, cfg.MaxFileSize)
	dashboardHandler := handler.NewDashboardHandler(dashboard)
	exportHandler := handler.NewExportHandler(dashboard)
	chartsHandler := handler.NewChartsHandler(dashboard)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "P&G Dashboard",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		statements := api.Group("/statements")
		{
			statements.POST("/pyg", statementHandler.UploadPyG)
			statements.POST("/balance", statementHandler.UploadBalance)
		}

		dash := api.Group("/dashboard")
		{
			dash.GET("/summary", dashboardHandler.Summary)
			dash.GET("/revenue", dashboardHandler.Revenue)
			dash.GET("/expenses", dashboardHandler.Expenses)
			dash.GET("/comparative", dashboardHandler.Comparative)
			dash.GET("/kpis", dashboardHandler.AdvancedKPIs)
			dash.GET("/balance", dashboardHandler.Balance)
			dash.GET("/ratios", dashboardHandler.Ratios)
		}

		export := api.Group("/export")
		{
			export.GET("/excel", exportHandler.Excel)
			export.GET("/pdf", exportHandler.PDF)
		}
	}

	// Rendered chart pages
	router.GET("/charts/:section", chartsHandler.Section)

	// Start server
	log.Infof("Starting P&G Dashboard Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
