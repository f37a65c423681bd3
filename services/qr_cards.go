package services

import (
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/qrsheet"
	"gorm.io/gorm"
)

// QRCards builds the printable cards for every active table, ordered by section then number.
func QRCards(db *gorm.DB, baseURL string) ([]qrsheet.Card, error) {
	var tables []models.Table
	if err := db.Preload("Section").
		Where("is_active = ?", true).
		Order("section_id ASC").
		Order("table_number ASC").
		Find(&tables).Error; err != nil {
		return nil, err
	}

	cards := make([]qrsheet.Card, 0, len(tables))
	for _, t := range tables {
		card := qrsheet.Card{
			TableNumber: t.TableNumber,
			MenuURL:     qrsheet.MenuURL(baseURL, t.TableNumber),
			GeneratedAt: t.QRGeneratedAt,
		}
		if t.Section != nil {
			card.SectionName = t.Section.Name
		}
		cards = append(cards, card)
	}
	return cards, nil
}
