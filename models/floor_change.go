package models

import (
	"time"
)

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"

	EntityTables        = "tables"
	EntityFloorSections = "floor_sections"
)

// FloorChange is an outbox row; the change monitor turns it into a floor hub event.
type FloorChange struct {
	ID         uint      `gorm:"primaryKey"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_entity_action"`
	RecordID   uint      `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_entity_action"`
	ChangedAt  time.Time `gorm:"not null;index"`
	Processed  bool      `gorm:"not null;default:false;index:idx_processed"`
}
