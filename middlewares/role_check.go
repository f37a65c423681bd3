package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
)

// StaffRoles may read the floor plan and change table status.
var StaffRoles = []string{models.RoleAdmin, models.RoleManager, models.RoleWaiter, models.RoleKitchen, models.RoleBar}

// ManagerRoles may edit the floor plan.
var ManagerRoles = []string{models.RoleAdmin, models.RoleManager}

func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", strings.Join(roles, " or ")))
		c.Abort()
	}
}
