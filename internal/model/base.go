package model

import "time"

// Base carries the columns shared by every persisted entity. Records are
// soft-deleted: IsDeleted is flipped and the row stays in place so that
// document references never dangle.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `gorm:"not null;default:false;index" json:"is_deleted"`
}
