package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/services"
	"github.com/grandcafe/floorplan/utils"
	"gorm.io/gorm"
)

var ErrSectionHasTables = &CustomError{"Cannot delete a floor section that still has tables assigned"}

type FloorSectionController struct {
	DB *gorm.DB
}

func NewFloorSectionController(db *gorm.DB) *FloorSectionController {
	return &FloorSectionController{DB: db}
}

type sectionFields struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func checkSectionName(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	if err := tx.Model(&models.FloorSection{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateSection
	}
	return nil
}

// GetAllSections -> sections in display order with the number of tables on each
func (fc *FloorSectionController) GetAllSections(c *gin.Context) {
	query := fc.DB.Order("sort_order ASC").Order("name ASC")
	if c.Query("active_only") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var sections []models.FloorSection
	if err := query.Find(&sections).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var counts []struct {
		SectionID uint
		Count     int64
	}
	if err := fc.DB.Model(&models.Table{}).
		Select("section_id, count(*) as count").
		Where("section_id IS NOT NULL").
		Group("section_id").
		Scan(&counts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	bySection := make(map[uint]int64, len(counts))
	for _, row := range counts {
		bySection[row.SectionID] = row.Count
	}
	for i := range sections {
		sections[i].TableCount = bySection[sections[i].ID]
	}

	utils.RespondJSON(c, http.StatusOK, "List of floor sections", sections)
}

// CreateSection -> new floor section, appended after the last one unless sort_order is given
func (fc *FloorSectionController) CreateSection(c *gin.Context) {
	var req sectionFields
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	section := models.FloorSection{
		Name:        strings.TrimSpace(*req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		section.IsActive = *req.IsActive
	}

	err := fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := checkSectionName(tx, section.Name, 0); err != nil {
			return err
		}

		if req.SortOrder != nil && *req.SortOrder != 0 {
			section.SortOrder = *req.SortOrder
		} else {
			var maxOrder int
			if err := tx.Model(&models.FloorSection{}).
				Select("COALESCE(MAX(sort_order), 0)").
				Scan(&maxOrder).Error; err != nil {
				return err
			}
			section.SortOrder = maxOrder + 1
		}

		if err := tx.Create(&section).Error; err != nil {
			return err
		}
		return services.RecordChange(tx, models.EntityFloorSections, section.ID, models.ChangeInsert)
	})
	if err != nil {
		respondSectionError(c, err)
		return
	}

	utils.InfoLogger.Printf("Floor section created: %s (sort_order=%d)", section.Name, section.SortOrder)
	utils.RespondJSON(c, http.StatusCreated, "Floor section created", section)
}

// UpdateSection -> partial update
func (fc *FloorSectionController) UpdateSection(c *gin.Context) {
	id, err := parseID(c, "section_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req sectionFields
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("name cannot be empty"))
		return
	}

	var section models.FloorSection
	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&section, id).Error; err != nil {
			return err
		}

		if req.Name != nil {
			section.Name = strings.TrimSpace(*req.Name)
			if err := checkSectionName(tx, section.Name, section.ID); err != nil {
				return err
			}
		}
		if req.Description != nil {
			section.Description = req.Description
		}
		if req.SortOrder != nil {
			section.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			section.IsActive = *req.IsActive
		}

		if err := tx.Save(&section).Error; err != nil {
			return err
		}
		return services.RecordChange(tx, models.EntityFloorSections, section.ID, models.ChangeUpdate)
	})
	if err != nil {
		respondSectionError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Floor section updated", section)
}

// DeleteSection -> only empty sections can be removed
func (fc *FloorSectionController) DeleteSection(c *gin.Context) {
	id, err := parseID(c, "section_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var section models.FloorSection
	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&section, id).Error; err != nil {
			return err
		}

		var tables int64
		if err := tx.Model(&models.Table{}).Where("section_id = ?", section.ID).Count(&tables).Error; err != nil {
			return err
		}
		if tables > 0 {
			return ErrSectionHasTables
		}

		if err := tx.Delete(&section).Error; err != nil {
			return err
		}
		return services.RecordChange(tx, models.EntityFloorSections, section.ID, models.ChangeDelete)
	})
	if err != nil {
		respondSectionError(c, err)
		return
	}

	utils.InfoLogger.Printf("Floor section %s deleted", section.Name)
	utils.RespondJSON(c, http.StatusOK, "Floor section deleted", gin.H{"id": section.ID})
}

func respondSectionError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, ErrSectionNotFound)
		return
	}
	respondWriteError(c, err)
}
