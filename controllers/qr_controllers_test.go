package controllers_test

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/controllers"
	"github.com/grandcafe/floorplan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var qrNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupQRRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	db := setupTestDB(t)
	ctrl := controllers.NewQRController(db, "https://cafe.example.com/")
	ctrl.Now = func() time.Time { return qrNow }

	r := gin.New()
	r.POST("/tables/qr", ctrl.GenerateAllQR)
	r.GET("/tables/qr-pdf", ctrl.ExportQRPDF)
	r.POST("/tables/:table_id/qr", ctrl.GenerateQR)
	r.GET("/tables/:table_id/qr-image", ctrl.QRImage)
	return db, r
}

func TestGenerateQR(t *testing.T) {
	db, r := setupQRRouter(t)
	table := seedTable(t, db, models.Table{TableNumber: "A 1"})

	w, resp := doJSON(t, r, http.MethodPost, fmt.Sprintf("/tables/%d/qr", table.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "QR code generated", resp.Message)

	var data struct {
		QRCodeURL string `json:"qr_code_url"`
		MenuURL   string `json:"menu_url"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, fmt.Sprintf("/admin/tables/%d/qr-image", table.ID), data.QRCodeURL)
	assert.Equal(t, "https://cafe.example.com/menu/digital?table=A+1", data.MenuURL)

	var stored models.Table
	require.NoError(t, db.First(&stored, table.ID).Error)
	require.NotNil(t, stored.QRCodeURL)
	require.NotNil(t, stored.QRGeneratedAt)
	assert.True(t, stored.QRGeneratedAt.Equal(qrNow))

	w, _ = doJSON(t, r, http.MethodPost, "/tables/999/qr", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateAllQR(t *testing.T) {
	db, r := setupQRRouter(t)
	seedTable(t, db, models.Table{TableNumber: "B1"})
	seedTable(t, db, models.Table{TableNumber: "A1"})

	w, resp := doJSON(t, r, http.MethodPost, "/tables/qr", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "QR codes generated for 2 tables", resp.Message)

	var results []struct {
		TableNumber string `json:"table_number"`
	}
	decodeData(t, resp, &results)
	require.Len(t, results, 2)
	assert.Equal(t, "A1", results[0].TableNumber)
	assert.Equal(t, "B1", results[1].TableNumber)

	var missing int64
	db.Model(&models.Table{}).Where("qr_generated_at IS NULL").Count(&missing)
	assert.Equal(t, int64(0), missing)
}

func TestQRImage(t *testing.T) {
	db, r := setupQRRouter(t)
	table := seedTable(t, db, models.Table{TableNumber: "A1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tables/%d/qr-image?size=128", table.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tables/%d/qr-image?size=5", table.ID), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportQRPDF(t *testing.T) {
	db, r := setupQRRouter(t)
	section := models.FloorSection{Name: "Terrace", IsActive: true}
	require.NoError(t, db.Create(&section).Error)
	for i := 1; i <= 7; i++ {
		seedTable(t, db, models.Table{TableNumber: fmt.Sprintf("T%d", i), SectionID: &section.ID})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tables/qr-pdf", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="table-qr-codes-2024-05-01.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}
