package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/config"
	"github.com/jstittsworth/fantasy-edge/pkg/utils"
)

type AnalysisHandler struct {
	service *services.AnalysisService
	cfg     *config.Config
}

func NewAnalysisHandler(service *services.AnalysisService, cfg *config.Config) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		cfg:     cfg,
	}
}

type runAnalysisRequest struct {
	PerformancePath string `json:"performance_path" binding:"required"`
	RostersPath     string `json:"rosters_path"`
	TopN            int    `json:"top_n"`
	CurrentWeek     int    `json:"current_week"`
}

// RunAnalysis executes the season analysis pipeline over local CSV
// exports and persists the scored run.
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	var req runAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	topN := req.TopN
	if topN <= 0 {
		topN = h.cfg.AnalysisTopN
	}
	currentWeek := req.CurrentWeek
	if currentWeek <= 0 {
		currentWeek = h.cfg.CurrentWeek
	}

	result, err := h.service.Run(c.Request.Context(), services.AnalysisRequest{
		PerformancePath: req.PerformancePath,
		RostersPath:     req.RostersPath,
		TopN:            topN,
		CurrentWeek:     currentWeek,
		Policy:          fantasy.OverlayPolicy(),
	})
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}

	utils.SendSuccess(c, result)
}

// GetRun returns one persisted run with its scored players.
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Analysis run not found")
			return
		}
		utils.SendInternalError(c, err.Error())
		return
	}

	utils.SendSuccess(c, run)
}

// GetBuckets returns one run's category buckets in rank order.
func (h *AnalysisHandler) GetBuckets(c *gin.Context) {
	buckets, err := h.service.GetBuckets(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Analysis run not found")
			return
		}
		utils.SendInternalError(c, err.Error())
		return
	}

	utils.SendSuccess(c, buckets)
}
