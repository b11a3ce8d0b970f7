package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ForecastRun records the summary of one completed forecast run. Persistence
// is best-effort; the in-memory result returned to the caller is the source of
// truth, this table only exists for later inspection.
type ForecastRun struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID string    `json:"organization_id" gorm:"not null;index"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	RollingBaseline  float64 `json:"rolling_baseline"`
	DataPoints       int     `json:"data_points"`
	HistoryTruncated bool    `json:"history_truncated"`
	OverallAccuracy  float64 `json:"overall_accuracy"`
	AccuracyRating   string  `json:"accuracy_rating"`

	Summary datatypes.JSON `json:"summary" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *ForecastRun) TableName() string { return "forecast_runs" }

func (r *ForecastRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
