package fantasy

import "sort"

// Category tags assigned by Classify.
const (
	CategoryWaiver   = "Waiver"
	CategoryBuyLow   = "Buy-Low"
	CategorySellHigh = "Sell-High"
)

// DefaultTopN is the bucket size used when the caller passes topN <= 0.
const DefaultTopN = 5

// Buckets holds the top-N entries per category, in rank order.
type Buckets struct {
	Waiver   []PlayerMetrics `json:"waiver"`
	BuyLow   []PlayerMetrics `json:"buy_low"`
	SellHigh []PlayerMetrics `json:"sell_high"`
}

// Classify ranks a population of aggregated players into waiver, buy-low
// and sell-high buckets of at most topN entries each, and returns tagged
// copies of the full population. The input slice is never mutated, so
// ranking stays stable across repeated passes. Tags are additive: a player
// already carrying a category keeps it and gains the new one.
//
// Waiver candidates are free agents ranked by recent form (season average
// as tiebreak). Buy-low and sell-high apply only to rostered players with
// expectation data, ranked by how far their performance ratio sits below
// or above 1.0 (delta as tiebreak).
func Classify(metrics []PlayerMetrics, topN int) ([]PlayerMetrics, Buckets) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	tagged := make([]PlayerMetrics, len(metrics))
	for i, m := range metrics {
		tagged[i] = m
		tagged[i].Categories = append([]string(nil), m.Categories...)
	}

	var free, rostered []*PlayerMetrics
	for i := range tagged {
		if tagged[i].IsFreeAgent() {
			free = append(free, &tagged[i])
		} else {
			rostered = append(rostered, &tagged[i])
		}
	}

	waiver := topBy(free, topN, func(a, b *PlayerMetrics) bool {
		if a.RecentAvg != b.RecentAvg {
			return a.RecentAvg > b.RecentAvg
		}
		return a.AvgActual > b.AvgActual
	})
	for _, m := range waiver {
		m.Categories = append(m.Categories, CategoryWaiver)
	}

	var buyPool, sellPool []*PlayerMetrics
	for _, m := range rostered {
		if m.TotalExpected <= 0 {
			continue
		}
		if m.Ratio < 1.0 {
			buyPool = append(buyPool, m)
		} else if m.Ratio > 1.0 {
			sellPool = append(sellPool, m)
		}
	}

	buyLow := topBy(buyPool, topN, func(a, b *PlayerMetrics) bool {
		if a.Ratio != b.Ratio {
			return a.Ratio < b.Ratio
		}
		return a.Delta < b.Delta
	})
	for _, m := range buyLow {
		m.Categories = append(m.Categories, CategoryBuyLow)
	}

	sellHigh := topBy(sellPool, topN, func(a, b *PlayerMetrics) bool {
		if a.Ratio != b.Ratio {
			return a.Ratio > b.Ratio
		}
		return a.Delta > b.Delta
	})
	for _, m := range sellHigh {
		m.Categories = append(m.Categories, CategorySellHigh)
	}

	return tagged, Buckets{
		Waiver:   deref(waiver),
		BuyLow:   deref(buyLow),
		SellHigh: deref(sellHigh),
	}
}

func topBy(pool []*PlayerMetrics, n int, less func(a, b *PlayerMetrics) bool) []*PlayerMetrics {
	ranked := make([]*PlayerMetrics, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func deref(ms []*PlayerMetrics) []PlayerMetrics {
	out := make([]PlayerMetrics, len(ms))
	for i, m := range ms {
		out[i] = *m
	}
	return out
}
