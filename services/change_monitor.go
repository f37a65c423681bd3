package services

import (
	"sync"
	"time"

	"github.com/grandcafe/floorplan/floorhub"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
	"gorm.io/gorm"
)

const changeBatchSize = 100

// RecordChange writes an outbox row. Call it with the transaction that made the change.
func RecordChange(tx *gorm.DB, entityType string, recordID uint, action string) error {
	return tx.Create(&models.FloorChange{
		EntityType: entityType,
		RecordID:   recordID,
		ActionType: action,
		ChangedAt:  time.Now(),
	}).Error
}

// ChangeMonitor polls the floor change outbox and pushes each change to the floor hub.
type ChangeMonitor struct {
	DB       *gorm.DB
	Hub      *floorhub.Hub
	Interval time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewChangeMonitor(db *gorm.DB, hub *floorhub.Hub) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		Hub:      hub,
		Interval: 1 * time.Second,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	if cm.Interval <= 0 {
		cm.Interval = time.Second
	}
	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := cm.ProcessPending(); err != nil {
					utils.ErrorLogger.Printf("Error processing floor changes: %v", err)
				}
			case <-cm.stopChan:
				return
			}
		}
	}()
}

// Stop ends the polling loop and waits for it to return.
func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
	<-cm.done
}

// ProcessPending broadcasts up to one batch of unprocessed changes, oldest first.
func (cm *ChangeMonitor) ProcessPending() (int, error) {
	var changes []models.FloorChange

	err := cm.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("processed = ?", false).
			Order("changed_at ASC, id ASC").
			Limit(changeBatchSize).
			Find(&changes).Error; err != nil {
			return err
		}

		for _, change := range changes {
			switch change.EntityType {
			case models.EntityTables:
				cm.processTableChange(tx, change)
			case models.EntityFloorSections:
				cm.processSectionChange(tx, change)
			default:
				utils.ErrorLogger.Printf("Unknown entity type in floor change %d: %s", change.ID, change.EntityType)
			}

			if err := tx.Model(&models.FloorChange{}).
				Where("id = ?", change.ID).
				Update("processed", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(changes) > 0 {
		utils.InfoLogger.Debugf("Processed %d floor changes", len(changes))
	}
	return len(changes), nil
}

func (cm *ChangeMonitor) processTableChange(tx *gorm.DB, change models.FloorChange) {
	if change.ActionType == models.ChangeDelete {
		cm.Hub.BroadcastTableDelete(change.RecordID)
		return
	}

	var table models.Table
	if err := tx.First(&table, change.RecordID).Error; err != nil {
		// deleted before the change was picked up; the DELETE row follows
		utils.InfoLogger.Debugf("Table %d from change %d no longer exists", change.RecordID, change.ID)
		return
	}

	switch change.ActionType {
	case models.ChangeInsert:
		cm.Hub.BroadcastTableCreate(table)
	case models.ChangeUpdate:
		cm.Hub.BroadcastTableUpdate(table)
	}
}

func (cm *ChangeMonitor) processSectionChange(tx *gorm.DB, change models.FloorChange) {
	if change.ActionType == models.ChangeDelete {
		cm.Hub.BroadcastSection(floorhub.EventSectionDelete, models.FloorSection{ID: change.RecordID})
		return
	}

	var section models.FloorSection
	if err := tx.First(&section, change.RecordID).Error; err != nil {
		utils.InfoLogger.Debugf("Floor section %d from change %d no longer exists", change.RecordID, change.ID)
		return
	}

	switch change.ActionType {
	case models.ChangeInsert:
		cm.Hub.BroadcastSection(floorhub.EventSectionCreate, section)
	case models.ChangeUpdate:
		cm.Hub.BroadcastSection(floorhub.EventSectionUpdate, section)
	}
}
