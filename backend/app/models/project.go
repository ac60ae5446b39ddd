package models

import "time"

// Project is owned by the manager who created it. CreatedBy never changes.
type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"index;size:191;not null"`
	Description string `gorm:"type:text"`
	CreatedBy   uint   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
