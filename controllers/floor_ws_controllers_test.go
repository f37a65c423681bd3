package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/grandcafe/floorplan/controllers"
	"github.com/grandcafe/floorplan/floorhub"
	"github.com/grandcafe/floorplan/middlewares"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorHubHandlerDeliversEvents(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	hub := floorhub.NewHub()
	r := gin.New()
	r.GET("/ws/floor", middlewares.WebSocketAuthMiddleware(), controllers.FloorHubHandler(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/floor"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := utils.GenerateToken(3, models.RoleWaiter)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastTableDelete(42)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg floorhub.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, floorhub.EventTableDelete, msg.Event)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
