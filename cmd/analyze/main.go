package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fantasy-edge/internal/csvio"
	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/services"
)

func main() {
	var (
		performancePath = flag.String("performance", "", "player performance CSV (required)")
		rostersPath     = flag.String("rosters", "", "league rosters CSV; players default to free agents without it")
		outPath         = flag.String("out", "analysis_report.csv", "report CSV to write")
		topN            = flag.Int("top-n", fantasy.DefaultTopN, "entries per category bucket")
		currentWeek     = flag.Int("current-week", 0, "current league week; 0 reads it from the CSV")
	)
	flag.Parse()

	logger := logrus.StandardLogger()
	if *performancePath == "" {
		flag.Usage()
		logger.Fatal("-performance is required")
	}

	svc := services.NewAnalysisService(nil, nil, logger)
	result, err := svc.Run(context.Background(), services.AnalysisRequest{
		PerformancePath: *performancePath,
		RostersPath:     *rostersPath,
		TopN:            *topN,
		CurrentWeek:     *currentWeek,
		Policy:          fantasy.ReportPolicy(),
	})
	if err != nil {
		logger.Fatalf("Analysis failed: %v", err)
	}

	if err := csvio.WriteAnalysisReport(*outPath, result.Rows); err != nil {
		logger.Fatalf("Failed to write report: %v", err)
	}

	green := 0
	for _, row := range result.Rows {
		if row.Recommendation == "GREEN" {
			green++
		}
	}

	logger.WithFields(logrus.Fields{
		"report":    *outPath,
		"players":   len(result.Rows),
		"rostered":  result.RosterMatch.Matched,
		"green":     green,
		"waiver":    len(result.Buckets.Waiver),
		"buy_low":   len(result.Buckets.BuyLow),
		"sell_high": len(result.Buckets.SellHigh),
	}).Info("Report written")

	printBucket(logger, "Waiver targets", result.Buckets.Waiver)
	printBucket(logger, "Buy-low candidates", result.Buckets.BuyLow)
	printBucket(logger, "Sell-high candidates", result.Buckets.SellHigh)
}

func printBucket(logger *logrus.Logger, title string, players []fantasy.PlayerMetrics) {
	if len(players) == 0 {
		return
	}
	logger.Info(title + ":")
	for i, p := range players {
		logger.Infof("  %d. %s (%s) recent %.1f avg %.1f ratio %.2f", i+1, p.Name, p.Team, p.RecentAvg, p.AvgActual, p.Ratio)
	}
}
