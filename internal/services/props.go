package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/models"
	"github.com/jstittsworth/fantasy-edge/pkg/database"
)

// PropsService compares market lines against projections and persists
// the resulting OVER/UNDER batches.
type PropsService struct {
	db     *database.DB
	cache  Cache
	lines  *LinesService
	logger *logrus.Logger
}

func NewPropsService(db *database.DB, cache Cache, lines *LinesService, logger *logrus.Logger) *PropsService {
	return &PropsService{
		db:     db,
		cache:  cache,
		lines:  lines,
		logger: logger,
	}
}

// PropsRequest names the inputs of one recommendation batch. Lines may
// be supplied directly; otherwise the lines service resolves them.
type PropsRequest struct {
	StatCategory string
	MinDiffAbs   float64
	MinDiffPct   float64
	Rule         string
	Matching     fantasy.KeyOptions
	Projections  []fantasy.Projection
	Lines        []fantasy.Line
}

// PropsResult is one recommendation batch with its join accounting.
type PropsResult struct {
	BatchID         string                   `json:"batch_id,omitempty"`
	Recommendations []fantasy.Recommendation `json:"recommendations"`
	Stats           fantasy.MatchStats       `json:"stats"`
}

// Recommend runs the comparator over the lines board.
func (s *PropsService) Recommend(ctx context.Context, req PropsRequest) (*PropsResult, error) {
	if !fantasy.ValidRule(req.Rule) {
		return nil, fmt.Errorf("invalid recommendation rule %q", req.Rule)
	}
	if len(req.Projections) == 0 {
		return nil, fmt.Errorf("no projections provided")
	}

	lines := req.Lines
	if len(lines) == 0 && s.lines != nil {
		lines = s.lines.GetLines(ctx)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no lines available")
	}

	recs, stats := fantasy.RecommendProps(lines, req.Projections, fantasy.PropOptions{
		StatCategory: req.StatCategory,
		Matching:     req.Matching,
		MinDiffAbs:   req.MinDiffAbs,
		MinDiffPct:   req.MinDiffPct,
		Rule:         req.Rule,
	})

	result := &PropsResult{
		Recommendations: recs,
		Stats:           stats,
	}

	if s.db != nil {
		batch, err := s.persistBatch(req, result)
		if err != nil {
			return nil, err
		}
		result.BatchID = batch.ID

		if s.cache != nil {
			if err := s.cache.Set(ctx, PropBatchCacheKey(batch.ID), batch, analysisCacheTTL); err != nil {
				s.logger.Warnf("Failed to cache prop batch: %v", err)
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"stat_category": fantasy.NormalizeCategory(req.StatCategory),
		"total_lines":   stats.Total,
		"matched":       stats.Matched,
		"picks":         len(recs),
	}).Info("Prop recommendation batch completed")

	return result, nil
}

// ListBatches returns recent batches, newest first.
func (s *PropsService) ListBatches(ctx context.Context, limit int) ([]models.PropBatch, error) {
	if s.db == nil {
		return nil, fmt.Errorf("no database configured")
	}
	if limit <= 0 {
		limit = 20
	}
	var batches []models.PropBatch
	err := s.db.DB.Order("created_at DESC").Limit(limit).Find(&batches).Error
	return batches, err
}

// GetBatch loads one persisted batch with its picks, reading through the
// cache before the database.
func (s *PropsService) GetBatch(ctx context.Context, batchID string) (*models.PropBatch, error) {
	if s.cache != nil {
		var cached models.PropBatch
		if err := s.cache.Get(ctx, PropBatchCacheKey(batchID), &cached); err == nil && cached.ID != "" {
			return &cached, nil
		}
	}

	if s.db == nil {
		return nil, fmt.Errorf("no database configured")
	}
	var batch models.PropBatch
	if err := s.db.DB.Preload("Recommendations").First(&batch, "id = ?", batchID).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, PropBatchCacheKey(batchID), &batch, analysisCacheTTL); err != nil {
			s.logger.Warnf("Failed to cache prop batch: %v", err)
		}
	}
	return &batch, nil
}

func (s *PropsService) persistBatch(req PropsRequest, result *PropsResult) (*models.PropBatch, error) {
	batch := models.PropBatch{
		StatCategory: fantasy.NormalizeCategory(req.StatCategory),
		Rule:         req.Rule,
		MinDiffAbs:   req.MinDiffAbs,
		MinDiffPct:   req.MinDiffPct,
		TotalLines:   result.Stats.Total,
		MatchedLines: result.Stats.Matched,
		DroppedLines: result.Stats.Dropped,
		CreatedAt:    time.Now().UTC(),
	}
	for _, r := range result.Recommendations {
		batch.Recommendations = append(batch.Recommendations, models.PropRecommendationRecord{
			Player:       r.Player,
			Team:         r.Team,
			Pos:          r.Pos,
			StatCategory: r.StatCategory,
			Line:         r.Line,
			Projection:   r.Projection,
			Diff:         r.Diff,
			DiffPct:      r.DiffPct,
			Side:         r.Side,
			Source:       r.Source,
		})
	}

	if err := s.db.DB.Create(&batch).Error; err != nil {
		return nil, fmt.Errorf("failed to persist prop batch: %w", err)
	}
	return &batch, nil
}
