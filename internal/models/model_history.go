package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/salesreport/pkg/types"
)

// History is an append-only record of a generated artifact. Rows are never
// updated; deletion is a hard delete guarded by (id, email).
type History struct {
	ID     int64              `gorm:"primaryKey" json:"id"`
	Email  string             `gorm:"size:255;not null;index:idx_history_email_created,priority:1" json:"email"`
	Input  string             `gorm:"type:text" json:"input"`
	Output string             `gorm:"type:text;not null" json:"output"`
	Format string             `gorm:"size:50;default:simple" json:"format"`
	Type   types.ArtifactType `gorm:"size:20;default:report" json:"type"`
	// Extra holds structured payloads that accompany the text output,
	// currently the coaching score breakdown.
	Extra     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra,omitempty"`
	CreatedAt time.Time      `gorm:"index:idx_history_email_created,priority:2,sort:desc" json:"created_at"`
}

func (History) TableName() string {
	return "salesreport_history"
}
