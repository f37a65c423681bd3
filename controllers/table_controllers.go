package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/grandcafe/floorplan/floorhub"
	"github.com/grandcafe/floorplan/floorplan"
	"github.com/grandcafe/floorplan/metrics"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/services"
	"github.com/grandcafe/floorplan/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB      *gorm.DB
	Hub     *floorhub.Hub
	Metrics *metrics.Metrics

	// IgnoreInactive leaves inactive tables out of the overlap check on move.
	IgnoreInactive bool
}

func NewTableController(db *gorm.DB, hub *floorhub.Hub, m *metrics.Metrics) *TableController {
	return &TableController{DB: db, Hub: hub, Metrics: m}
}

// tableFields is shared by create, update and the bulk floor plan save.
// A section_id of 0 takes the table out of its section.
type tableFields struct {
	TableNumber *string  `json:"table_number" binding:"omitempty,max=50"`
	Capacity    *int     `json:"capacity" binding:"omitempty,min=1"`
	SectionID   *uint    `json:"section_id"`
	XPosition   *float64 `json:"x_position"`
	YPosition   *float64 `json:"y_position"`
	Width       *float64 `json:"width" binding:"omitempty,gt=0"`
	Height      *float64 `json:"height" binding:"omitempty,gt=0"`
	Shape       *string  `json:"shape" binding:"omitempty,oneof=round square rectangle"`
	Status      *string  `json:"status" binding:"omitempty,oneof=available occupied reserved cleaning"`
	Rotation    *float64 `json:"rotation" binding:"omitempty,min=0,max=360"`
	IsActive    *bool    `json:"is_active"`
	Notes       *string  `json:"notes" binding:"omitempty,max=500"`
}

func applyTableFields(t *models.Table, f tableFields) {
	if f.TableNumber != nil {
		t.TableNumber = strings.TrimSpace(*f.TableNumber)
	}
	if f.Capacity != nil {
		t.Capacity = *f.Capacity
	}
	if f.SectionID != nil {
		if *f.SectionID == 0 {
			t.SectionID = nil
		} else {
			id := *f.SectionID
			t.SectionID = &id
		}
		t.Section = nil
	}
	if f.XPosition != nil {
		t.XPosition = *f.XPosition
	}
	if f.YPosition != nil {
		t.YPosition = *f.YPosition
	}
	if f.Width != nil {
		t.Width = *f.Width
	}
	if f.Height != nil {
		t.Height = *f.Height
	}
	if f.Shape != nil {
		t.Shape = *f.Shape
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	if f.Rotation != nil {
		t.Rotation = *f.Rotation
	}
	if f.IsActive != nil {
		t.IsActive = *f.IsActive
	}
	if f.Notes != nil {
		t.Notes = f.Notes
	}
}

func checkTableNumber(tx *gorm.DB, number string, exceptID uint) error {
	var count int64
	if err := tx.Model(&models.Table{}).
		Where("table_number = ? AND id <> ?", number, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateTable
	}
	return nil
}

func checkSection(tx *gorm.DB, sectionID *uint) error {
	if sectionID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.FloorSection{}).Where("id = ?", *sectionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrSectionNotFound
	}
	return nil
}

// nextTableNumber returns T<n+1> where n is the highest number used so far.
func nextTableNumber(tx *gorm.DB) (string, error) {
	var numbers []string
	if err := tx.Model(&models.Table{}).Pluck("table_number", &numbers).Error; err != nil {
		return "", err
	}

	highest := 0
	for _, number := range numbers {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, number)
		if n, err := strconv.Atoi(digits); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("T%d", highest+1), nil
}

// respondWriteError maps errors returned from a write transaction.
func respondWriteError(c *gin.Context, err error) {
	var custom *CustomError
	switch {
	case errors.Is(err, ErrTableNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &custom):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// CreateTable -> adds a table to the floor plan
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableFields
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		Capacity:  4,
		XPosition: 50,
		YPosition: 50,
		Width:     floorplan.DefaultSize,
		Height:    floorplan.DefaultSize,
		Shape:     string(floorplan.ShapeRound),
		Status:    models.TableStatusAvailable,
		IsActive:  true,
	}
	applyTableFields(&table, req)
	if table.Shape == string(floorplan.ShapeRectangle) && req.Height == nil {
		table.Height = 120
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if table.TableNumber == "" {
			number, err := nextTableNumber(tx)
			if err != nil {
				return err
			}
			table.TableNumber = number
		}
		if err := checkTableNumber(tx, table.TableNumber, 0); err != nil {
			return err
		}
		if err := checkSection(tx, table.SectionID); err != nil {
			return err
		}
		if err := tx.Create(&table).Error; err != nil {
			return err
		}
		return services.RecordChange(tx, models.EntityTables, table.ID, models.ChangeInsert)
	})
	if err != nil {
		respondWriteError(c, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s (shape=%s, section=%v)", table.TableNumber, table.Shape, table.SectionID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> lists tables, optionally filtered by status, section and activity
func (tc *TableController) GetAllTables(c *gin.Context) {
	query := tc.DB.Preload("Section").Order("table_number ASC")

	if status := c.Query("status"); status != "" {
		if !models.IsValidTableStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid status %q", status))
			return
		}
		query = query.Where("status = ?", status)
	}
	if sectionID := c.Query("section_id"); sectionID != "" {
		id, err := strconv.ParseUint(sectionID, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid section_id"))
			return
		}
		query = query.Where("section_id = ?", id)
	}
	if c.Query("active_only") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var tables []models.Table
	if err := query.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> one table with its section
func (tc *TableController) GetTableByID(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.Preload("Section").First(&table, id).Error; err != nil {
		respondDBError(c, err, ErrTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> partial update of a table's properties
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req tableFields
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TableNumber != nil && strings.TrimSpace(*req.TableNumber) == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table_number cannot be empty"))
		return
	}

	var table models.Table
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		return updateTable(tx, id, req, &table)
	})
	if err != nil {
		respondWriteError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %s updated", table.TableNumber)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func updateTable(tx *gorm.DB, id uint, req tableFields, table *models.Table) error {
	if err := tx.First(table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("table %d: %w", id, ErrTableNotFound)
		}
		return err
	}

	applyTableFields(table, req)

	if req.TableNumber != nil {
		if err := checkTableNumber(tx, table.TableNumber, table.ID); err != nil {
			return err
		}
	}
	if req.SectionID != nil {
		if err := checkSection(tx, table.SectionID); err != nil {
			return err
		}
	}
	if err := tx.Save(table).Error; err != nil {
		return err
	}
	return services.RecordChange(tx, models.EntityTables, table.ID, models.ChangeUpdate)
}

// UpdateTableStatus -> any staff member can change the service status
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Status string `json:"status" binding:"required,oneof=available occupied reserved cleaning"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		return updateTable(tx, id, tableFields{Status: &body.Status}, &table)
	})
	if err != nil {
		respondWriteError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %s status changed to %s", table.TableNumber, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

type moveTableRequest struct {
	X  *float64 `json:"x"`
	Y  *float64 `json:"y"`
	DX *float64 `json:"dx"`
	DY *float64 `json:"dy"`
}

// MoveTable -> drag-and-drop end: validates the new spot against the other
// tables of the same floor section and commits it only when nothing overlaps.
func (tc *TableController) MoveTable(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req moveTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.X == nil && req.Y == nil && req.DX == nil && req.DY == nil {
		utils.RespondError(c, http.StatusBadRequest, ErrEmptyMove)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		respondDBError(c, err, ErrTableNotFound)
		return
	}

	newX := resolveCoordinate(table.XPosition, req.X, req.DX)
	newY := resolveCoordinate(table.YPosition, req.Y, req.DY)
	newX, newY = floorplan.Clamp(newX, newY)

	others, err := tc.floorPlacements(table.SectionID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if conflict, found := floorplan.FindConflict(table.Placement(), newX, newY, others); found {
		tc.rejectMove(c, table, conflict, newX, newY)
		return
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Table{}).Where("id = ?", table.ID).Updates(map[string]interface{}{
			"x_position": newX,
			"y_position": newY,
		}).Error; err != nil {
			return err
		}
		return services.RecordChange(tx, models.EntityTables, table.ID, models.ChangeUpdate)
	})
	if err != nil {
		utils.ErrorLogger.Printf("Failed to move table %s: %v", table.TableNumber, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	table.XPosition, table.YPosition = newX, newY
	tc.Metrics.RecordMove(metrics.MoveAccepted)
	utils.InfoLogger.Printf("Table %s moved to (%.1f, %.1f)", table.TableNumber, newX, newY)
	utils.RespondJSON(c, http.StatusOK, "Table moved", table)
}

func resolveCoordinate(current float64, absolute, delta *float64) float64 {
	switch {
	case absolute != nil:
		return *absolute
	case delta != nil:
		return current + *delta
	default:
		return current
	}
}

// floorPlacements loads every table on the same floor section, the moved one included.
func (tc *TableController) floorPlacements(sectionID *uint) ([]floorplan.Placement, error) {
	query := tc.DB.Model(&models.Table{})
	if sectionID == nil {
		query = query.Where("section_id IS NULL")
	} else {
		query = query.Where("section_id = ?", *sectionID)
	}

	var tables []models.Table
	if err := query.Find(&tables).Error; err != nil {
		return nil, err
	}

	placements := make([]floorplan.Placement, 0, len(tables))
	for _, t := range tables {
		placements = append(placements, t.Placement())
	}
	if tc.IgnoreInactive {
		placements = floorplan.ActiveOnly(placements)
	}
	return placements, nil
}

func (tc *TableController) rejectMove(c *gin.Context, table models.Table, conflict floorplan.Placement, x, y float64) {
	message := fmt.Sprintf("Cannot place %s here, it overlaps with %s.", table.TableNumber, conflict.Label)

	notice := models.Notification{
		UserID:  currentUserID(c),
		TableID: &table.ID,
		Title:   "Table overlap detected",
		Message: message,
	}
	if err := tc.DB.Create(&notice).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to store overlap notice for table %s: %v", table.TableNumber, err)
	}

	tc.Hub.BroadcastMoveRejected(floorhub.MoveRejection{
		TableID:             table.ID,
		TableNumber:         table.TableNumber,
		ConflictTableID:     conflict.ID,
		ConflictTableNumber: conflict.Label,
		X:                   x,
		Y:                   y,
		Message:             message,
	})
	tc.Metrics.RecordMove(metrics.MoveRejected)

	utils.InfoLogger.Printf("Rejected move of table %s to (%.1f, %.1f): overlaps %s", table.TableNumber, x, y, conflict.Label)
	utils.RespondErrorData(c, http.StatusConflict, errors.New(message), gin.H{
		"table": table,
		"conflict": gin.H{
			"id":           conflict.ID,
			"table_number": conflict.Label,
		},
	})
}

type bulkTableUpdate struct {
	ID uint `json:"id"`
	tableFields
}

// BulkUpdateTables -> saves the whole floor plan editor state in one transaction
func (tc *TableController) BulkUpdateTables(c *gin.Context) {
	var updates []bulkTableUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("request body must be an array of table updates"))
		return
	}

	for _, u := range updates {
		if u.ID == 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("each table update must include an id"))
			return
		}
		if err := binding.Validator.ValidateStruct(&u.tableFields); err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("validation failed for table %d: %w", u.ID, err))
			return
		}
	}

	updatedIDs := make([]uint, 0, len(updates))
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			var table models.Table
			if err := updateTable(tx, u.ID, u.tableFields, &table); err != nil {
				return err
			}
			updatedIDs = append(updatedIDs, u.ID)
		}
		return nil
	})
	if err != nil {
		respondWriteError(c, err)
		return
	}

	utils.InfoLogger.Printf("Floor plan saved: %d tables updated", len(updatedIDs))
	utils.RespondJSON(c, http.StatusOK, "Floor plan saved", gin.H{
		"updated_count": len(updatedIDs),
		"updated_ids":   updatedIDs,
	})
}

// DeleteTable -> removes a table that is not in service
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		respondDBError(c, err, ErrTableNotFound)
		return
	}

	if table.Status == models.TableStatusOccupied || table.Status == models.TableStatusReserved {
		utils.RespondError(c, http.StatusBadRequest, ErrTableInUse)
		return
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&table).Error; err != nil {
			return err
		}
		return services.RecordChange(tx, models.EntityTables, table.ID, models.ChangeDelete)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %s deleted", table.TableNumber)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": table.ID,
	})
}

// MarkTableClean -> cleaning done, table goes back to available
func (tc *TableController) MarkTableClean(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		respondDBError(c, err, ErrTableNotFound)
		return
	}

	if table.Status != models.TableStatusCleaning {
		utils.RespondError(c, http.StatusBadRequest, ErrTableNotCleaning)
		return
	}

	available := models.TableStatusAvailable
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		return updateTable(tx, id, tableFields{Status: &available}, &table)
	})
	if err != nil {
		respondWriteError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table marked as clean", table)
}

// GetTableStats -> table counts per status
func (tc *TableController) GetTableStats(c *gin.Context) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := tc.DB.Model(&models.Table{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	stats := map[string]int64{
		models.TableStatusAvailable: 0,
		models.TableStatusOccupied:  0,
		models.TableStatusReserved:  0,
		models.TableStatusCleaning:  0,
	}
	var total int64
	for _, row := range rows {
		stats[row.Status] = row.Count
		total += row.Count
	}
	stats["total"] = total

	var active int64
	if err := tc.DB.Model(&models.Table{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	stats["active"] = active

	utils.RespondJSON(c, http.StatusOK, "Table stats", stats)
}
