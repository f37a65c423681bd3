package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/qrsheet"
	"github.com/grandcafe/floorplan/services"
	"github.com/grandcafe/floorplan/utils"
	"gorm.io/gorm"
)

const defaultQRImageSize = 512

type QRController struct {
	DB      *gorm.DB
	BaseURL string
	Now     func() time.Time
}

func NewQRController(db *gorm.DB, baseURL string) *QRController {
	return &QRController{DB: db, BaseURL: baseURL, Now: time.Now}
}

type qrResult struct {
	TableID       uint      `json:"table_id"`
	TableNumber   string    `json:"table_number"`
	QRCodeURL     string    `json:"qr_code_url"`
	MenuURL       string    `json:"menu_url"`
	QRGeneratedAt time.Time `json:"qr_generated_at"`
}

func qrImagePath(tableID uint) string {
	return fmt.Sprintf("/admin/tables/%d/qr-image", tableID)
}

// stampQR records a fresh QR code on the table inside tx.
func (qc *QRController) stampQR(tx *gorm.DB, table *models.Table) (qrResult, error) {
	now := qc.Now()
	url := qrImagePath(table.ID)

	if err := tx.Model(table).Updates(map[string]interface{}{
		"qr_code_url":     url,
		"qr_generated_at": now,
	}).Error; err != nil {
		return qrResult{}, err
	}
	if err := services.RecordChange(tx, models.EntityTables, table.ID, models.ChangeUpdate); err != nil {
		return qrResult{}, err
	}

	table.QRCodeURL = &url
	table.QRGeneratedAt = &now
	return qrResult{
		TableID:       table.ID,
		TableNumber:   table.TableNumber,
		QRCodeURL:     url,
		MenuURL:       qrsheet.MenuURL(qc.BaseURL, table.TableNumber),
		QRGeneratedAt: now,
	}, nil
}

// GenerateQR -> (re)generates the QR code of one table
func (qc *QRController) GenerateQR(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var result qrResult
	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, id).Error; err != nil {
			return err
		}
		result, err = qc.stampQR(tx, &table)
		return err
	})
	if err != nil {
		respondDBError(c, err, ErrTableNotFound)
		return
	}

	utils.InfoLogger.Printf("QR code generated for table %s", result.TableNumber)
	utils.RespondJSON(c, http.StatusOK, "QR code generated", result)
}

// GenerateAllQR -> regenerates QR codes for every table
func (qc *QRController) GenerateAllQR(c *gin.Context) {
	var results []qrResult
	err := qc.DB.Transaction(func(tx *gorm.DB) error {
		var tables []models.Table
		if err := tx.Order("table_number ASC").Find(&tables).Error; err != nil {
			return err
		}

		results = make([]qrResult, 0, len(tables))
		for i := range tables {
			result, err := qc.stampQR(tx, &tables[i])
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		utils.ErrorLogger.Printf("Bulk QR generation failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("QR codes generated for %d tables", len(results))
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("QR codes generated for %d tables", len(results)), results)
}

// QRImage -> PNG of the table's menu QR code
func (qc *QRController) QRImage(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	size := defaultQRImageSize
	if s := c.Query("size"); s != "" {
		size, err = strconv.Atoi(s)
		if err != nil || size < 64 || size > 2048 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("size must be between 64 and 2048"))
			return
		}
	}

	var table models.Table
	if err := qc.DB.First(&table, id).Error; err != nil {
		respondDBError(c, err, ErrTableNotFound)
		return
	}

	var buf bytes.Buffer
	if err := qrsheet.WritePNG(&buf, qrsheet.MenuURL(qc.BaseURL, table.TableNumber), size); err != nil {
		utils.ErrorLogger.Printf("QR image for table %s: %v", table.TableNumber, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// ExportQRPDF -> A4 sheet of QR cards for printing
func (qc *QRController) ExportQRPDF(c *gin.Context) {
	cards, err := services.QRCards(qc.DB, qc.BaseURL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := qc.Now()
	var buf bytes.Buffer
	if err := qrsheet.Render(&buf, cards, qrsheet.Options{Title: "Table QR Codes", Now: now}); err != nil {
		utils.ErrorLogger.Printf("Rendering QR sheet: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("table-qr-codes-%s.pdf", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
