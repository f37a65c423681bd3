package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetMyNotifications -> notices addressed to the acting user, newest first
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID := currentUserID(c)
	if userID == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	query := nc.DB.Where("user_id = ?", *userID).Order("created_at DESC").Order("id DESC")
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}

	var notifs []models.Notification
	if err := query.Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

// DeleteNotification -> users can only dismiss their own notices
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, err := parseID(c, "notif_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	userID := currentUserID(c)
	if userID == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var notif models.Notification
	if err := nc.DB.Where("id = ? AND user_id = ?", id, *userID).First(&notif).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, ErrNotificationMissing)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := nc.DB.Delete(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}
