package data

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// Investigation is one completed investigation, persisted for the history
// view. The full payload lives in the response cache; this row keeps only
// the audit-relevant summary.
type Investigation struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	Fingerprint     string    `gorm:"size:32;index" json:"fingerprint"`
	SessionKey      string    `gorm:"size:128;index" json:"-"`
	Verdict         string    `gorm:"size:16" json:"verdict"`
	Confidence      int       `json:"confidence"`
	Headline        string    `gorm:"size:512" json:"headline"`
	VerifiedSources int       `json:"verifiedSources"`
	TotalSources    int       `json:"totalSources"`
	CreatedAt       time.Time `json:"createdAt"`
}

// History records and lists investigations. A nil *History (no MySQL
// configured) disables persistence; every method tolerates that.
type History struct {
	db *gorm.DB
}

func NewHistory(db *gorm.DB) *History {
	if db == nil {
		return nil
	}
	return &History{db: db}
}

// Record stores one investigation row. Fail-open: a write error is logged
// and never surfaces into the request path.
func (h *History) Record(inv Investigation) {
	if h == nil {
		return
	}
	if err := h.db.Create(&inv).Error; err != nil {
		log.Printf("history: record: %v", err)
	}
}

// Recent returns up to limit investigations, most recent first.
func (h *History) Recent(limit int) []Investigation {
	if h == nil {
		return nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []Investigation
	if err := h.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		log.Printf("history: recent: %v", err)
		return nil
	}
	return rows
}
