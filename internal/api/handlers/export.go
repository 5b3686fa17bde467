package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/utils"
)

type ExportHandler struct {
	service *services.ExportService
}

func NewExportHandler(service *services.ExportService) *ExportHandler {
	return &ExportHandler{
		service: service,
	}
}

type exportRequest struct {
	Mode string `json:"mode"` // roster|standings|matchups|player-stats|free-agents|all
	Week int    `json:"week"`
}

// Export pulls the configured league and writes the requested CSVs.
func (h *ExportHandler) Export(c *gin.Context) {
	if h.service == nil {
		utils.SendValidationError(c, "Export is not configured", "set ESPN_LEAGUE_ID and ESPN_SEASON")
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	ctx := c.Request.Context()
	var (
		paths []string
		path  string
		err   error
	)
	switch req.Mode {
	case "roster":
		path, err = h.service.ExportRosters(ctx)
	case "standings":
		path, err = h.service.ExportStandings(ctx)
	case "matchups":
		path, err = h.service.ExportMatchups(ctx, req.Week)
	case "player-stats":
		path, err = h.service.ExportPlayerStats(ctx, req.Week)
	case "free-agents":
		path, err = h.service.ExportFreeAgents(ctx, req.Week)
	case "all", "":
		paths, err = h.service.ExportAll(ctx, req.Week)
	default:
		utils.SendValidationError(c, "Unknown export mode", req.Mode)
		return
	}
	if err != nil {
		utils.SendUpstreamError(c, err.Error())
		return
	}
	if path != "" {
		paths = []string{path}
	}

	utils.SendSuccess(c, gin.H{"paths": paths})
}
