package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisRun is one execution of the season analysis pipeline.
type AnalysisRun struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Source        string    `json:"source"` // performance CSV the run was built from
	TopN          int       `json:"top_n"`
	CurrentWeek   int       `json:"current_week"`
	PlayerCount   int       `json:"player_count"`
	RosteredCount int       `json:"rostered_count"` // players the roster join resolved
	CreatedAt     time.Time `json:"created_at"`

	// Buckets snapshots the classifier output in rank order.
	Buckets datatypes.JSON `json:"buckets,omitempty"`

	Players []PlayerMetricsRecord `gorm:"foreignKey:RunID" json:"players,omitempty"`
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}

func (r *AnalysisRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// PlayerMetricsRecord is one player's scored season line within a run.
type PlayerMetricsRecord struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	RunID string `gorm:"type:uuid;index;not null" json:"run_id"`

	Name     string `gorm:"index" json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`

	Games         int     `json:"games"`
	TotalActual   float64 `json:"total_actual"`
	TotalExpected float64 `json:"total_expected"`
	AvgActual     float64 `json:"avg_actual"`
	RecentAvg     float64 `json:"recent_avg"`
	Stdev         float64 `json:"stdev"`
	Ratio         float64 `json:"ratio"`
	Delta         float64 `json:"delta"`

	Categories datatypes.JSON `json:"categories"` // tag list, e.g. ["Waiver","Buy-Low"]
	IRStatus   string         `json:"ir_status,omitempty"`

	Score          int    `json:"score"`
	Recommendation string `json:"recommendation"` // "GREEN" or "RED"
}

func (PlayerMetricsRecord) TableName() string {
	return "player_metrics"
}

// PropBatch is one prop recommendation run against a lines board.
type PropBatch struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	StatCategory string    `json:"stat_category"`
	Rule         string    `json:"rule"`
	MinDiffAbs   float64   `json:"min_diff_abs"`
	MinDiffPct   float64   `json:"min_diff_pct"`
	TotalLines   int       `json:"total_lines"`
	MatchedLines int       `json:"matched_lines"`
	DroppedLines int       `json:"dropped_lines"`
	CreatedAt    time.Time `json:"created_at"`

	Recommendations []PropRecommendationRecord `gorm:"foreignKey:BatchID" json:"recommendations,omitempty"`
}

func (PropBatch) TableName() string {
	return "prop_batches"
}

func (b *PropBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// PropRecommendationRecord is one OVER/UNDER pick within a batch.
type PropRecommendationRecord struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	BatchID string `gorm:"type:uuid;index;not null" json:"batch_id"`

	Player       string  `gorm:"index" json:"player"`
	Team         string  `json:"team"`
	Pos          string  `json:"pos"`
	StatCategory string  `json:"stat_category"`
	Line         float64 `json:"line"`
	Projection   float64 `json:"projection"`
	Diff         float64 `json:"diff"`
	DiffPct      float64 `json:"diff_pct"`
	Side         string  `json:"side"`
	Source       string  `json:"source"`
}

func (PropRecommendationRecord) TableName() string {
	return "prop_recommendations"
}
