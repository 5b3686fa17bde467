package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fantasy-edge/internal/csvio"
	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/providers"
	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/config"
)

func main() {
	var (
		projectionsPath = flag.String("projections", "", "projections CSV (required)")
		outPath         = flag.String("out", "prop_recommendations.csv", "recommendations CSV to write")
		statCategory    = flag.String("stat", "", "stat category, e.g. rushing_yards (defaults to config)")
		minDiffAbs      = flag.Float64("min-diff-abs", -1, "absolute edge threshold (defaults to config)")
		minDiffPct      = flag.Float64("min-diff-pct", -1, "relative edge threshold (defaults to config)")
		rule            = flag.String("rule", "", "abs_only, pct_only or abs_or_pct (defaults to config)")
		teamRequired    = flag.Bool("team-required", false, "require team agreement when matching")
		posRequired     = flag.Bool("position-required", false, "require position agreement when matching")
		playerCol       = flag.String("player-col", "", "projections player column override")
		teamCol         = flag.String("team-col", "", "projections team column override")
		posCol          = flag.String("pos-col", "", "projections position column override")
		valueCol        = flag.String("value-col", "", "projections value column override")
		offlineLines    = flag.String("lines", "", "offline lines JSON file (defaults to config)")
		downloadLines   = flag.Bool("download-lines", false, "fetch the live board now, bypassing any cached copy")
	)
	flag.Parse()

	logger := logrus.StandardLogger()
	if *projectionsPath == "" {
		flag.Usage()
		logger.Fatal("-projections is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if *statCategory == "" {
		*statCategory = cfg.StatCategory
	}
	if *rule == "" {
		*rule = cfg.RecommendationRule
	}
	if *minDiffAbs < 0 {
		*minDiffAbs = cfg.MinDiffAbs
	}
	if *minDiffPct < 0 {
		*minDiffPct = cfg.MinDiffPct
	}

	projections, err := csvio.LoadProjections(*projectionsPath, *statCategory, csvio.ProjectionColumns{
		Player: *playerCol,
		Team:   *teamCol,
		Pos:    *posCol,
		Value:  *valueCol,
	}, csvio.DefaultPositionsForStat(*statCategory))
	if err != nil {
		logger.Fatalf("Failed to load projections: %v", err)
	}
	if len(projections) == 0 {
		logger.Fatalf("No usable projections in %s", *projectionsPath)
	}

	var fetcher services.LinesFetcher
	fetchEnabled := cfg.UnderdogEnabled || *downloadLines
	if fetchEnabled && cfg.UnderdogEndpoint != "" {
		var headers map[string]string
		if cfg.UnderdogAPIKey != "" {
			headers = map[string]string{"X-Api-Key": cfg.UnderdogAPIKey}
		}
		fetcher = providers.NewUnderdogClient(cfg.UnderdogEndpoint, headers, logger)
	}
	offlinePath := cfg.OfflineLinesPath
	if *offlineLines != "" {
		offlinePath = *offlineLines
	}
	linesService := services.NewLinesService(fetcher, nil, services.LinesOptions{
		FetchEnabled: fetchEnabled,
		CachePath:    cfg.LinesCachePath,
		CacheTTL:     time.Duration(cfg.LinesCacheTTL) * time.Minute,
		OfflinePath:  offlinePath,
	}, logger)

	ctx := context.Background()

	// An explicit download always hits the endpoint, even with a fresh cache.
	var boardLines []fantasy.Line
	if *downloadLines {
		if fetcher == nil {
			logger.Fatal("-download-lines requires UNDERDOG_ENDPOINT")
		}
		boardLines, err = linesService.Refresh(ctx)
		if err != nil {
			logger.Fatalf("Failed to download lines: %v", err)
		}
	}

	propsService := services.NewPropsService(nil, nil, linesService, logger)
	result, err := propsService.Recommend(ctx, services.PropsRequest{
		StatCategory: *statCategory,
		MinDiffAbs:   *minDiffAbs,
		MinDiffPct:   *minDiffPct,
		Rule:         *rule,
		Matching: fantasy.KeyOptions{
			TeamRequired:     *teamRequired || cfg.MatchTeamRequired,
			PositionRequired: *posRequired || cfg.MatchPositionRequired,
		},
		Projections: projections,
		Lines:       boardLines,
	})
	if err != nil {
		logger.Fatalf("Recommendation failed: %v", err)
	}

	if err := csvio.WriteRecommendations(*outPath, result.Recommendations); err != nil {
		logger.Fatalf("Failed to write recommendations: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"out":         *outPath,
		"picks":       len(result.Recommendations),
		"total_lines": result.Stats.Total,
		"matched":     result.Stats.Matched,
		"dropped":     result.Stats.Dropped,
	}).Info("Recommendations written")

	for _, r := range result.Recommendations {
		logger.Infof("%s %s %s: line %.1f vs proj %.1f (diff %+.1f)", r.Side, r.Player, r.StatCategory, r.Line, r.Projection, r.Diff)
	}
}
