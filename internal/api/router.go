package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/fantasy-edge/internal/api/handlers"
	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/config"
)

// Services bundles the initialized services the routes depend on.
// Export may be nil when no ESPN league is configured.
type Services struct {
	Analysis *services.AnalysisService
	Props    *services.PropsService
	Lines    *services.LinesService
	Export   *services.ExportService
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, svcs Services, cfg *config.Config) {
	analysisHandler := handlers.NewAnalysisHandler(svcs.Analysis, cfg)
	propsHandler := handlers.NewPropsHandler(svcs.Props, cfg)
	linesHandler := handlers.NewLinesHandler(svcs.Lines)
	exportHandler := handlers.NewExportHandler(svcs.Export)

	// Analysis endpoints
	group.POST("/analysis", analysisHandler.RunAnalysis)
	group.GET("/analysis/:id", analysisHandler.GetRun)
	group.GET("/analysis/:id/buckets", analysisHandler.GetBuckets)

	// Prop recommendation endpoints
	group.POST("/props/recommend", propsHandler.RecommendProps)
	group.GET("/props/batches", propsHandler.ListBatches)
	group.GET("/props/batches/:id", propsHandler.GetBatch)

	// Lines endpoints
	group.GET("/lines", linesHandler.GetLines)
	group.POST("/lines/refresh", linesHandler.RefreshLines)
	group.GET("/lines/status", linesHandler.GetStatus)

	// League export endpoint
	group.POST("/export", exportHandler.Export)
}
