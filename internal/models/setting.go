package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores a JSON configuration value under a unique key.
type Setting struct {
	Key       string         `gorm:"type:text;primaryKey"`    // Setting key.
	Value     datatypes.JSON `gorm:"not null"`                // JSON payload.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
