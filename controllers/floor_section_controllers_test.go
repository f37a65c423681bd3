package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/controllers"
	"github.com/grandcafe/floorplan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSectionRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	db := setupTestDB(t)
	ctrl := controllers.NewFloorSectionController(db)

	r := gin.New()
	r.GET("/floor-sections", ctrl.GetAllSections)
	r.POST("/floor-sections", ctrl.CreateSection)
	r.PATCH("/floor-sections/:section_id", ctrl.UpdateSection)
	r.DELETE("/floor-sections/:section_id", ctrl.DeleteSection)
	return db, r
}

func TestCreateSectionSortOrder(t *testing.T) {
	db, r := setupSectionRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/floor-sections", map[string]interface{}{"name": "Main Hall"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var hall models.FloorSection
	decodeData(t, resp, &hall)
	assert.Equal(t, 1, hall.SortOrder)
	assert.True(t, hall.IsActive)

	w, resp = doJSON(t, r, http.MethodPost, "/floor-sections", map[string]interface{}{"name": "Patio", "sort_order": 10})
	require.Equal(t, http.StatusCreated, w.Code)
	var patio models.FloorSection
	decodeData(t, resp, &patio)
	assert.Equal(t, 10, patio.SortOrder)

	w, resp = doJSON(t, r, http.MethodPost, "/floor-sections", map[string]interface{}{"name": "Bar", "is_active": false})
	require.Equal(t, http.StatusCreated, w.Code)
	var bar models.FloorSection
	decodeData(t, resp, &bar)
	assert.Equal(t, 11, bar.SortOrder)
	assert.False(t, bar.IsActive)

	var changes int64
	db.Model(&models.FloorChange{}).Where("entity_type = ?", models.EntityFloorSections).Count(&changes)
	assert.Equal(t, int64(3), changes)
}

func TestCreateSectionValidation(t *testing.T) {
	db, r := setupSectionRouter(t)
	require.NoError(t, db.Create(&models.FloorSection{Name: "Terrace", IsActive: true}).Error)

	w, resp := doJSON(t, r, http.MethodPost, "/floor-sections", map[string]interface{}{"name": "Terrace"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Floor section with this name already exists", resp.Message)

	w, _ = doJSON(t, r, http.MethodPost, "/floor-sections", map[string]interface{}{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/floor-sections", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllSectionsWithTableCount(t *testing.T) {
	db, r := setupSectionRouter(t)
	hall := models.FloorSection{Name: "Hall", SortOrder: 2, IsActive: true}
	bar := models.FloorSection{Name: "Bar", SortOrder: 1, IsActive: true}
	closed := models.FloorSection{Name: "Closed", SortOrder: 3}
	require.NoError(t, db.Create(&hall).Error)
	require.NoError(t, db.Create(&bar).Error)
	require.NoError(t, db.Create(&closed).Error)

	seedTable(t, db, models.Table{TableNumber: "H1", SectionID: &hall.ID})
	seedTable(t, db, models.Table{TableNumber: "H2", SectionID: &hall.ID})
	seedTable(t, db, models.Table{TableNumber: "X1"})

	w, resp := doJSON(t, r, http.MethodGet, "/floor-sections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sections []models.FloorSection
	decodeData(t, resp, &sections)
	require.Len(t, sections, 3)
	assert.Equal(t, "Bar", sections[0].Name)
	assert.Equal(t, int64(0), sections[0].TableCount)
	assert.Equal(t, "Hall", sections[1].Name)
	assert.Equal(t, int64(2), sections[1].TableCount)

	w, resp = doJSON(t, r, http.MethodGet, "/floor-sections?active_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &sections)
	assert.Len(t, sections, 2)
}

func TestUpdateSection(t *testing.T) {
	db, r := setupSectionRouter(t)
	hall := models.FloorSection{Name: "Hall", SortOrder: 1, IsActive: true}
	bar := models.FloorSection{Name: "Bar", SortOrder: 2, IsActive: true}
	require.NoError(t, db.Create(&hall).Error)
	require.NoError(t, db.Create(&bar).Error)

	w, resp := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/floor-sections/%d", hall.ID), map[string]interface{}{"name": "Bar"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Floor section with this name already exists", resp.Message)

	w, resp = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/floor-sections/%d", hall.ID), map[string]interface{}{
		"name":      "Main Hall",
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.FloorSection
	decodeData(t, resp, &updated)
	assert.Equal(t, "Main Hall", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 1, updated.SortOrder)

	w, resp = doJSON(t, r, http.MethodPatch, "/floor-sections/999", map[string]interface{}{"name": "Nowhere"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Floor section not found", resp.Message)
}

func TestDeleteSection(t *testing.T) {
	db, r := setupSectionRouter(t)
	hall := models.FloorSection{Name: "Hall", IsActive: true}
	empty := models.FloorSection{Name: "Empty", IsActive: true}
	require.NoError(t, db.Create(&hall).Error)
	require.NoError(t, db.Create(&empty).Error)
	seedTable(t, db, models.Table{TableNumber: "H1", SectionID: &hall.ID})

	w, resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/floor-sections/%d", hall.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete a floor section that still has tables assigned", resp.Message)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/floor-sections/%d", empty.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.FloorSection{}).Count(&count)
	assert.Equal(t, int64(1), count)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/floor-sections/%d", empty.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
