package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/jstittsworth/fantasy-edge/internal/csvio"
	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/models"
	"github.com/jstittsworth/fantasy-edge/pkg/database"
)

// analysisCacheTTL bounds how long persisted runs stay readable from
// redis before falling back to the database.
const analysisCacheTTL = 30 * time.Minute

// AnalysisService runs the season analysis pipeline: load game logs and
// rosters, aggregate per player, rank category buckets, score each
// player, and persist the run. The database and cache are optional so
// the CLI can run the pipeline standalone.
type AnalysisService struct {
	db     *database.DB
	cache  Cache
	logger *logrus.Logger
}

func NewAnalysisService(db *database.DB, cache Cache, logger *logrus.Logger) *AnalysisService {
	return &AnalysisService{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// AnalysisRequest names the inputs of one pipeline run.
type AnalysisRequest struct {
	PerformancePath string
	RostersPath     string // optional; players default to free agents without it
	TopN            int
	CurrentWeek     int // overrides the week derived from the CSV when > 0
	Policy          fantasy.ScorePolicy
}

// AnalysisResult is the scored output of one run. RosterMatch counts how
// many players the roster join resolved; the rest defaulted to free agents.
type AnalysisResult struct {
	RunID       string
	CurrentWeek int
	Rows        []csvio.ReportRow
	Buckets     fantasy.Buckets
	RosterMatch fantasy.MatchStats
}

// Run executes the pipeline and persists the scored run when a database
// is configured.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	log, err := csvio.LoadPlayerGames(req.PerformancePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load player games: %w", err)
	}
	if len(log.Games) == 0 {
		return nil, fmt.Errorf("no player games found in %s", req.PerformancePath)
	}

	var rosters *csvio.RosterTable
	if req.RostersPath != "" {
		rosters, err = csvio.LoadRosters(req.RostersPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rosters: %w", err)
		}
	}

	currentWeek := req.CurrentWeek
	if currentWeek <= 0 {
		currentWeek = log.CurrentWeek
	}

	names := make([]string, 0, len(log.Games))
	for name := range log.Games {
		names = append(names, name)
	}
	sort.Strings(names)

	rosterMatch := fantasy.MatchStats{Total: len(names)}
	metrics := make([]fantasy.PlayerMetrics, 0, len(names))
	for _, name := range names {
		team := fantasy.FreeAgentTeam
		if rosters != nil {
			team = rosters.Lookup(name)
		}
		if team != fantasy.FreeAgentTeam {
			rosterMatch.Matched++
		} else {
			rosterMatch.Dropped++
		}
		m := fantasy.Aggregate(name, team, log.Games[name])
		m.Position = log.PrimaryPosition(name)
		metrics = append(metrics, m)
	}

	tagged, buckets := fantasy.Classify(metrics, req.TopN)

	rows := make([]csvio.ReportRow, 0, len(tagged))
	for _, m := range tagged {
		irStatus := s.irStatus(m.Name, rosters, log)
		score, _ := req.Policy.Score(m, irStatus, currentWeek)
		recommendation := "RED"
		if req.Policy.Recommended(score) {
			recommendation = "GREEN"
		}
		rows = append(rows, csvio.ReportRow{
			Metrics:        m,
			IRStatus:       irStatus,
			Score:          score,
			Recommendation: recommendation,
		})
	}

	result := &AnalysisResult{
		CurrentWeek: currentWeek,
		Rows:        rows,
		Buckets:     buckets,
		RosterMatch: rosterMatch,
	}

	if s.db != nil {
		run, err := s.persistRun(req, result)
		if err != nil {
			return nil, err
		}
		result.RunID = run.ID

		if s.cache != nil {
			if err := s.cache.Set(ctx, AnalysisRunCacheKey(run.ID), run, analysisCacheTTL); err != nil {
				s.logger.Warnf("Failed to cache analysis run: %v", err)
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"players":      len(rows),
		"rostered":     rosterMatch.Matched,
		"free_agents":  rosterMatch.Dropped,
		"current_week": currentWeek,
		"waiver":       len(buckets.Waiver),
		"buy_low":      len(buckets.BuyLow),
		"sell_high":    len(buckets.SellHigh),
	}).Info("Analysis run completed")

	return result, nil
}

// GetRun loads a persisted run, reading through the cache before the
// database.
func (s *AnalysisService) GetRun(ctx context.Context, runID string) (*models.AnalysisRun, error) {
	if s.cache != nil {
		var cached models.AnalysisRun
		if err := s.cache.Get(ctx, AnalysisRunCacheKey(runID), &cached); err == nil && cached.ID != "" {
			return &cached, nil
		}
	}

	if s.db == nil {
		return nil, fmt.Errorf("no database configured")
	}
	var run models.AnalysisRun
	if err := s.db.DB.Preload("Players").First(&run, "id = ?", runID).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, AnalysisRunCacheKey(runID), &run, analysisCacheTTL); err != nil {
			s.logger.Warnf("Failed to cache analysis run: %v", err)
		}
	}
	return &run, nil
}

// GetBuckets returns a run's category buckets in classifier rank order,
// decoded from the run's stored bucket snapshot.
func (s *AnalysisService) GetBuckets(ctx context.Context, runID string) (*fantasy.Buckets, error) {
	if s.cache != nil {
		var cached fantasy.Buckets
		if err := s.cache.Get(ctx, BucketsCacheKey(runID), &cached); err == nil {
			return &cached, nil
		}
	}

	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	var buckets fantasy.Buckets
	if len(run.Buckets) > 0 {
		if err := json.Unmarshal(run.Buckets, &buckets); err != nil {
			return nil, fmt.Errorf("failed to decode stored buckets: %w", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, BucketsCacheKey(runID), &buckets, analysisCacheTTL); err != nil {
			s.logger.Warnf("Failed to cache buckets: %v", err)
		}
	}
	return &buckets, nil
}

func (s *AnalysisService) persistRun(req AnalysisRequest, result *AnalysisResult) (*models.AnalysisRun, error) {
	bucketsJSON, err := json.Marshal(result.Buckets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode buckets: %w", err)
	}

	run := models.AnalysisRun{
		Source:        req.PerformancePath,
		TopN:          req.TopN,
		CurrentWeek:   result.CurrentWeek,
		PlayerCount:   len(result.Rows),
		RosteredCount: result.RosterMatch.Matched,
		Buckets:       datatypes.JSON(bucketsJSON),
	}

	for _, row := range result.Rows {
		m := row.Metrics
		tags, err := json.Marshal(m.Categories)
		if err != nil {
			return nil, fmt.Errorf("failed to encode category tags: %w", err)
		}
		run.Players = append(run.Players, models.PlayerMetricsRecord{
			Name:           m.Name,
			Team:           m.Team,
			Position:       m.Position,
			Games:          m.Games,
			TotalActual:    m.TotalActual,
			TotalExpected:  m.TotalExpected,
			AvgActual:      m.AvgActual,
			RecentAvg:      m.RecentAvg,
			Stdev:          m.Stdev,
			Ratio:          m.Ratio,
			Delta:          m.Delta,
			Categories:     datatypes.JSON(tags),
			IRStatus:       row.IRStatus,
			Score:          row.Score,
			Recommendation: row.Recommendation,
		})
	}

	if err := s.db.DB.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to persist analysis run: %w", err)
	}
	return &run, nil
}

// irStatus resolves a player's reserve annotation, rosters first, then
// the game log's lineup slot derivation.
func (s *AnalysisService) irStatus(name string, rosters *csvio.RosterTable, log *csvio.GameLog) string {
	key := fantasy.NormalizeName(name)
	if rosters != nil {
		if status, ok := rosters.IRStatus[key]; ok {
			return status
		}
	}
	return log.IRStatus[key]
}
