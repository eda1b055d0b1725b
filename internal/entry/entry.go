package entry

import (
	"time"

	"gorm.io/datatypes"
)

// DailyEntry is one user's answers to one form on one calendar day. UserID and
// ID together form the primary key, so a user holds at most one entry per
// (type, day).
type DailyEntry struct {
	UserID    string         `gorm:"primaryKey;size:64;index:idx_entries_user_type_updated,priority:1" json:"-"`
	ID        string         `gorm:"primaryKey;size:32" json:"id"`
	Type      FormType       `gorm:"size:16;not null;index:idx_entries_user_type_updated,priority:2" json:"type"`
	DateKey   string         `gorm:"size:8;not null" json:"dateKey"`
	Form      datatypes.JSON `json:"form"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false;not null;index:idx_entries_user_type_updated,priority:3" json:"updatedAt"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false" json:"-"`
}

func (DailyEntry) TableName() string { return "daily_entries" }
