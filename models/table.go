package models

import (
	"time"

	"github.com/grandcafe/floorplan/floorplan"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusReserved  = "reserved"
	TableStatusCleaning  = "cleaning"
)

type Table struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	TableNumber   string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"table_number"`
	Capacity      int           `gorm:"not null;default:4" json:"capacity"`
	SectionID     *uint         `gorm:"index" json:"section_id"`
	Section       *FloorSection `gorm:"foreignKey:SectionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"section,omitempty"`
	XPosition     float64       `gorm:"not null;default:0" json:"x_position"`
	YPosition     float64       `gorm:"not null;default:0" json:"y_position"`
	Width         float64       `gorm:"not null;default:80" json:"width"`
	Height        float64       `gorm:"not null;default:80" json:"height"`
	Shape         string        `gorm:"type:varchar(20);not null;default:'round'" json:"shape"`
	Status        string        `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	Rotation      float64       `gorm:"not null;default:0" json:"rotation"`
	IsActive      bool          `gorm:"not null" json:"is_active"`
	Notes         *string       `gorm:"type:varchar(500)" json:"notes,omitempty"`
	QRCodeURL     *string       `gorm:"type:varchar(255)" json:"qr_code_url,omitempty"`
	QRGeneratedAt *time.Time    `json:"qr_generated_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

// Placement returns the table as seen by the floor plan validator.
func (t Table) Placement() floorplan.Placement {
	return floorplan.Placement{
		ID:       t.ID,
		Label:    t.TableNumber,
		Shape:    floorplan.Shape(t.Shape),
		Width:    t.Width,
		Height:   t.Height,
		X:        t.XPosition,
		Y:        t.YPosition,
		IsActive: t.IsActive,
	}
}

func IsValidTableStatus(status string) bool {
	switch status {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusCleaning:
		return true
	}
	return false
}
