package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/models"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const performanceFixture = `player_name,week,points,projected_points,position,current_week
Hot Pickup,1,12.0,6.0,WR,4
Hot Pickup,2,14.0,6.0,WR,4
Hot Pickup,3,16.0,6.0,WR,4
Steady Starter,1,18.0,17.0,RB,4
Steady Starter,2,17.0,17.0,RB,4
Steady Starter,3,19.0,17.0,RB,4
Slumping Star,1,8.0,16.0,WR,4
Slumping Star,2,9.0,16.0,WR,4
Slumping Star,3,7.0,16.0,WR,4
`

const rostersFixture = `player_name,team_name,injury_status,ir_duration
Steady Starter,Gridiron Geeks,,
Slumping Star,Gridiron Geeks,INJURY_RESERVE,3w
`

func TestAnalysisRunStandalone(t *testing.T) {
	svc := NewAnalysisService(nil, nil, logrus.New())

	result, err := svc.Run(context.Background(), AnalysisRequest{
		PerformancePath: writeFixture(t, "perf.csv", performanceFixture),
		RostersPath:     writeFixture(t, "rosters.csv", rostersFixture),
		TopN:            5,
		Policy:          fantasy.ReportPolicy(),
	})
	require.NoError(t, err)

	assert.Empty(t, result.RunID, "no database, no persisted run")
	assert.Equal(t, 4, result.CurrentWeek, "week read from the CSV")
	require.Len(t, result.Rows, 3)

	byName := make(map[string]int)
	for i, row := range result.Rows {
		byName[row.Metrics.Name] = i
	}

	hot := result.Rows[byName["Hot Pickup"]]
	assert.Equal(t, fantasy.FreeAgentTeam, hot.Metrics.Team, "unrostered players default to free agents")
	assert.Contains(t, hot.Metrics.Categories, fantasy.CategoryWaiver)
	assert.Equal(t, "GREEN", hot.Recommendation, "hot waiver pickup clears the threshold")

	slumping := result.Rows[byName["Slumping Star"]]
	assert.Equal(t, "Gridiron Geeks", slumping.Metrics.Team)
	assert.Contains(t, slumping.Metrics.Categories, fantasy.CategoryBuyLow)
	assert.Equal(t, "IR - 3w", slumping.IRStatus)
	assert.Equal(t, "RED", slumping.Recommendation, "IR penalty outweighs the buy-low bonus")

	assert.NotEmpty(t, result.Buckets.Waiver)
	assert.NotEmpty(t, result.Buckets.BuyLow)

	assert.Equal(t, fantasy.MatchStats{Total: 3, Matched: 2, Dropped: 1}, result.RosterMatch)
}

func TestAnalysisRunCurrentWeekOverride(t *testing.T) {
	svc := NewAnalysisService(nil, nil, logrus.New())

	result, err := svc.Run(context.Background(), AnalysisRequest{
		PerformancePath: writeFixture(t, "perf.csv", performanceFixture),
		TopN:            5,
		CurrentWeek:     9,
		Policy:          fantasy.ReportPolicy(),
	})
	require.NoError(t, err)
	assert.Equal(t, 9, result.CurrentWeek)
}

func TestAnalysisRunEmptyInput(t *testing.T) {
	svc := NewAnalysisService(nil, nil, logrus.New())

	_, err := svc.Run(context.Background(), AnalysisRequest{
		PerformancePath: writeFixture(t, "perf.csv", "player_name,week,points\n"),
		Policy:          fantasy.ReportPolicy(),
	})
	assert.Error(t, err)
}

func TestAnalysisRunMissingFile(t *testing.T) {
	svc := NewAnalysisService(nil, nil, logrus.New())

	_, err := svc.Run(context.Background(), AnalysisRequest{
		PerformancePath: filepath.Join(t.TempDir(), "nope.csv"),
		Policy:          fantasy.ReportPolicy(),
	})
	assert.Error(t, err)
}

func cachedRunFixture(t *testing.T) models.AnalysisRun {
	t.Helper()
	buckets := fantasy.Buckets{
		Waiver: []fantasy.PlayerMetrics{
			{Name: "Zeta Receiver", Team: fantasy.FreeAgentTeam, RecentAvg: 18.0},
			{Name: "Alpha Receiver", Team: fantasy.FreeAgentTeam, RecentAvg: 12.0},
		},
		BuyLow: []fantasy.PlayerMetrics{
			{Name: "Slumping Star", Team: "Gridiron Geeks", Ratio: 0.5},
		},
	}
	data, err := json.Marshal(buckets)
	require.NoError(t, err)

	return models.AnalysisRun{
		ID:          "run-1",
		CurrentWeek: 4,
		PlayerCount: 3,
		Buckets:     datatypes.JSON(data),
		Players: []models.PlayerMetricsRecord{
			{Name: "Alpha Receiver", Score: 3, Recommendation: "GREEN"},
		},
	}
}

func TestGetRunReadsThroughCache(t *testing.T) {
	cache := newFakeCache()
	fixture := cachedRunFixture(t)
	require.NoError(t, cache.Set(context.Background(), AnalysisRunCacheKey("run-1"), &fixture, time.Minute))

	svc := NewAnalysisService(nil, cache, logrus.New())
	run, err := svc.GetRun(context.Background(), "run-1")
	require.NoError(t, err, "cache hit needs no database")
	assert.Equal(t, 4, run.CurrentWeek)
	require.Len(t, run.Players, 1)
	assert.Equal(t, "GREEN", run.Players[0].Recommendation)

	_, err = svc.GetRun(context.Background(), "run-2")
	assert.Error(t, err, "cache miss without a database")
}

func TestGetBucketsPreservesRankOrder(t *testing.T) {
	cache := newFakeCache()
	fixture := cachedRunFixture(t)
	require.NoError(t, cache.Set(context.Background(), AnalysisRunCacheKey("run-1"), &fixture, time.Minute))

	svc := NewAnalysisService(nil, cache, logrus.New())
	buckets, err := svc.GetBuckets(context.Background(), "run-1")
	require.NoError(t, err)

	require.Len(t, buckets.Waiver, 2)
	assert.Equal(t, "Zeta Receiver", buckets.Waiver[0].Name, "ranked by recent form, not alphabetically")
	assert.Equal(t, "Alpha Receiver", buckets.Waiver[1].Name)
	require.Len(t, buckets.BuyLow, 1)
	assert.Empty(t, buckets.SellHigh)

	// The decoded buckets are cached for the next read.
	var cached fantasy.Buckets
	require.NoError(t, cache.Get(context.Background(), BucketsCacheKey("run-1"), &cached))
	assert.Equal(t, "Zeta Receiver", cached.Waiver[0].Name)
}
