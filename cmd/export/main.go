package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fantasy-edge/internal/providers"
	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/config"
)

func main() {
	var (
		mode     = flag.String("mode", "all", "roster, standings, matchups, player-stats, free-agents or all")
		week     = flag.Int("week", 0, "week to export; 0 means the league's current week")
		leagueID = flag.Int("league-id", 0, "ESPN league id (defaults to config)")
		season   = flag.Int("season", 0, "season year (defaults to config)")
		outDir   = flag.String("out-dir", "", "export directory (defaults to config)")
	)
	flag.Parse()

	logger := logrus.StandardLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *leagueID == 0 {
		*leagueID = cfg.ESPNLeagueID
	}
	if *season == 0 {
		*season = cfg.ESPNSeason
	}
	if *outDir == "" {
		*outDir = cfg.ExportDir
	}
	if *leagueID == 0 {
		logger.Fatal("No league configured: pass -league-id or set ESPN_LEAGUE_ID")
	}

	client := providers.NewESPNFantasyClient(*leagueID, *season, cfg.ESPNS2, cfg.SWID, logger)
	svc := services.NewExportService(client, *outDir, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var paths []string
	var path string
	switch *mode {
	case "roster":
		path, err = svc.ExportRosters(ctx)
	case "standings":
		path, err = svc.ExportStandings(ctx)
	case "matchups":
		path, err = svc.ExportMatchups(ctx, *week)
	case "player-stats":
		path, err = svc.ExportPlayerStats(ctx, *week)
	case "free-agents":
		path, err = svc.ExportFreeAgents(ctx, *week)
	case "all":
		paths, err = svc.ExportAll(ctx, *week)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}
	if err != nil {
		logger.Fatalf("Export failed: %v", err)
	}
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		logger.Infof("Wrote %s", p)
	}
}
