package fantasy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosteredPlayer(name string, ratio, delta float64) PlayerMetrics {
	return PlayerMetrics{
		Name: name, Team: "Team X", Games: 5,
		TotalExpected: 50, TotalActual: ratio * 50,
		Ratio: ratio, Delta: delta,
	}
}

func freeAgent(name string, recent, avg float64) PlayerMetrics {
	return PlayerMetrics{
		Name: name, Team: FreeAgentTeam, Games: 5,
		RecentAvg: recent, AvgActual: avg,
	}
}

func TestClassifyWaiverRanking(t *testing.T) {
	population := []PlayerMetrics{
		freeAgent("Hot Hand", 14, 9),
		freeAgent("Steady", 10, 12),
		freeAgent("Tied Recent High Avg", 10, 13),
		rosteredPlayer("Owned Guy", 0.9, -5),
	}

	_, buckets := Classify(population, 2)

	require.Len(t, buckets.Waiver, 2)
	assert.Equal(t, "Hot Hand", buckets.Waiver[0].Name)
	assert.Equal(t, "Tied Recent High Avg", buckets.Waiver[1].Name, "season average breaks the tie")
	for _, m := range buckets.Waiver {
		assert.True(t, m.IsFreeAgent(), "waiver bucket holds only free agents")
	}
}

func TestClassifyBuyLowAndSellHigh(t *testing.T) {
	population := []PlayerMetrics{
		rosteredPlayer("Deep Underperformer", 0.55, -22),
		rosteredPlayer("Mild Underperformer", 0.92, -4),
		rosteredPlayer("Exactly Expected", 1.0, 0),
		rosteredPlayer("Mild Overperformer", 1.1, 5),
		rosteredPlayer("Huge Overperformer", 1.6, 30),
		freeAgent("Street FA", 9, 8),
	}

	_, buckets := Classify(population, 5)

	require.Len(t, buckets.BuyLow, 2)
	assert.Equal(t, "Deep Underperformer", buckets.BuyLow[0].Name, "most underperforming first")
	for _, m := range buckets.BuyLow {
		assert.False(t, m.IsFreeAgent())
		assert.Less(t, m.Ratio, 1.0)
		assert.Greater(t, m.TotalExpected, 0.0)
	}

	require.Len(t, buckets.SellHigh, 2)
	assert.Equal(t, "Huge Overperformer", buckets.SellHigh[0].Name)
	for _, m := range buckets.SellHigh {
		assert.Greater(t, m.Ratio, 1.0)
	}

	assert.Empty(t, findByName(t, buckets.BuyLow, "Exactly Expected"), "ratio exactly 1.0 is neither bucket")
}

func TestClassifyBucketsNeverExceedTopN(t *testing.T) {
	var population []PlayerMetrics
	for i := 0; i < 12; i++ {
		population = append(population, freeAgent(fmt.Sprintf("FA %d", i), float64(i), float64(i)))
		population = append(population, rosteredPlayer(fmt.Sprintf("Low %d", i), 0.5+float64(i)*0.01, -float64(i)))
		population = append(population, rosteredPlayer(fmt.Sprintf("High %d", i), 1.2+float64(i)*0.01, float64(i)))
	}

	_, buckets := Classify(population, 0) // 0 falls back to the default

	assert.Len(t, buckets.Waiver, DefaultTopN)
	assert.Len(t, buckets.BuyLow, DefaultTopN)
	assert.Len(t, buckets.SellHigh, DefaultTopN)
}

func TestClassifyDoesNotMutateInputAndTagsAreAdditive(t *testing.T) {
	population := []PlayerMetrics{
		freeAgent("Pickup", 12, 10),
	}
	population[0].Categories = []string{"Preexisting"}

	tagged, _ := Classify(population, 5)

	assert.Equal(t, []string{"Preexisting"}, population[0].Categories, "input untouched")
	require.Len(t, tagged, 1)
	assert.Equal(t, []string{"Preexisting", CategoryWaiver}, tagged[0].Categories)
	assert.Equal(t, "Preexisting;Waiver", tagged[0].Category())
}

func TestClassifyNoExpectationDataExcluded(t *testing.T) {
	m := rosteredPlayer("No Projections", 0, -10)
	m.TotalExpected = 0
	m.Ratio = 0

	_, buckets := Classify([]PlayerMetrics{m}, 5)

	assert.Empty(t, buckets.BuyLow, "ratio sentinel 0.0 without expectation never qualifies")
	assert.Empty(t, buckets.SellHigh)
}

func findByName(t *testing.T, ms []PlayerMetrics, name string) []PlayerMetrics {
	t.Helper()
	var out []PlayerMetrics
	for _, m := range ms {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}
