package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jstittsworth/fantasy-edge/internal/csvio"
	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/config"
	"github.com/jstittsworth/fantasy-edge/pkg/utils"
)

type PropsHandler struct {
	service *services.PropsService
	cfg     *config.Config
}

func NewPropsHandler(service *services.PropsService, cfg *config.Config) *PropsHandler {
	return &PropsHandler{
		service: service,
		cfg:     cfg,
	}
}

type recommendPropsRequest struct {
	StatCategory     string               `json:"stat_category"`
	MinDiffAbs       *float64             `json:"min_diff_abs"`
	MinDiffPct       *float64             `json:"min_diff_pct"`
	Rule             string               `json:"rule"`
	TeamRequired     *bool                `json:"team_required"`
	PositionRequired *bool                `json:"position_required"`
	Projections      []fantasy.Projection `json:"projections"`
	ProjectionsPath  string               `json:"projections_path"`
	Lines            []fantasy.Line       `json:"lines"`
}

// RecommendProps compares a lines board against projections. Unset
// fields fall back to the configured defaults; projections may be
// inline or loaded from a CSV path.
func (h *PropsHandler) RecommendProps(c *gin.Context) {
	var req recommendPropsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	statCategory := req.StatCategory
	if statCategory == "" {
		statCategory = h.cfg.StatCategory
	}
	rule := req.Rule
	if rule == "" {
		rule = h.cfg.RecommendationRule
	}
	minDiffAbs := h.cfg.MinDiffAbs
	if req.MinDiffAbs != nil {
		minDiffAbs = *req.MinDiffAbs
	}
	minDiffPct := h.cfg.MinDiffPct
	if req.MinDiffPct != nil {
		minDiffPct = *req.MinDiffPct
	}
	matching := fantasy.KeyOptions{
		TeamRequired:     h.cfg.MatchTeamRequired,
		PositionRequired: h.cfg.MatchPositionRequired,
	}
	if req.TeamRequired != nil {
		matching.TeamRequired = *req.TeamRequired
	}
	if req.PositionRequired != nil {
		matching.PositionRequired = *req.PositionRequired
	}

	projections := req.Projections
	if len(projections) == 0 && req.ProjectionsPath != "" {
		loaded, err := csvio.LoadProjections(
			req.ProjectionsPath,
			statCategory,
			csvio.ProjectionColumns{},
			csvio.DefaultPositionsForStat(statCategory),
		)
		if err != nil {
			utils.SendValidationError(c, "Failed to load projections CSV", err.Error())
			return
		}
		projections = loaded
	}
	if len(projections) == 0 {
		utils.SendValidationError(c, "No projections provided", "supply projections inline or via projections_path")
		return
	}

	result, err := h.service.Recommend(c.Request.Context(), services.PropsRequest{
		StatCategory: statCategory,
		MinDiffAbs:   minDiffAbs,
		MinDiffPct:   minDiffPct,
		Rule:         rule,
		Matching:     matching,
		Projections:  projections,
		Lines:        req.Lines,
	})
	if err != nil {
		utils.SendValidationError(c, "Recommendation failed", err.Error())
		return
	}

	utils.SendSuccess(c, result)
}

// ListBatches returns recent recommendation batches.
func (h *PropsHandler) ListBatches(c *gin.Context) {
	batches, err := h.service.ListBatches(c.Request.Context(), 20)
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, batches)
}

// GetBatch returns one batch with its picks.
func (h *PropsHandler) GetBatch(c *gin.Context) {
	batch, err := h.service.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Prop batch not found")
			return
		}
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, batch)
}
