package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/utils"
	"gorm.io/gorm"
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

var (
	ErrTableNotFound       = &CustomError{"Table not found"}
	ErrSectionNotFound     = &CustomError{"Floor section not found"}
	ErrDuplicateTable      = &CustomError{"Table number already exists"}
	ErrDuplicateSection    = &CustomError{"Floor section with this name already exists"}
	ErrTableInUse          = &CustomError{"Cannot delete a table that is occupied or reserved"}
	ErrTableNotCleaning    = &CustomError{"Table is not being cleaned"}
	ErrEmptyMove           = &CustomError{"Provide x/y or dx/dy"}
	ErrRegistrationClosed  = &CustomError{"Registration is closed, ask an admin to create your account"}
	ErrInvalidCredentials  = &CustomError{"invalid credentials"}
	ErrNotificationMissing = &CustomError{"Notification not found"}
)

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", param)
	}
	return uint(id), nil
}

// respondDBError maps a gorm lookup error to 404 or 500.
func respondDBError(c *gin.Context, err error, notFound error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, notFound)
		return
	}
	utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	utils.RespondError(c, http.StatusInternalServerError, err)
}

// currentUserID returns the authenticated user, or nil on public routes.
func currentUserID(c *gin.Context) *uint {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := v.(uint)
	if !ok {
		return nil
	}
	return &id
}
