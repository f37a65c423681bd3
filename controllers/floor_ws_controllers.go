package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/grandcafe/floorplan/floorhub"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FloorHubHandler -> websocket endpoint for open floor plan editors
func FloorHubHandler(hub *floorhub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		role, _ := roleValue.(string)
		if !models.IsValidRole(role) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
			return
		}

		hub.Register(ws, role)
		utils.InfoLogger.Printf("Floor hub client connected (role=%s, clients=%d)", role, hub.ClientCount())

		// drain reads until the client goes away
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Unregister(ws)
	}
}
