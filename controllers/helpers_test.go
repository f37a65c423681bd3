package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/database"
	"github.com/grandcafe/floorplan/floorhub"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory sqlite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// asUser stands in for the auth middleware.
func asUser(id uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("role", role)
		c.Next()
	}
}

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r http.Handler, method, url string, body interface{}) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decodeData(t *testing.T, resp response, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, v), string(resp.Data))
}

// seedTable inserts an active table; tests that need it inactive update it afterwards.
func seedTable(t *testing.T, db *gorm.DB, table models.Table) models.Table {
	t.Helper()
	if table.Shape == "" {
		table.Shape = "square"
	}
	if table.Status == "" {
		table.Status = models.TableStatusAvailable
	}
	if table.Capacity == 0 {
		table.Capacity = 4
	}
	table.IsActive = true
	require.NoError(t, db.Create(&table).Error)
	return table
}

type hubClient struct {
	mu     sync.Mutex
	events []floorhub.Message
}

func (h *hubClient) WriteMessage(_ int, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var msg floorhub.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	h.events = append(h.events, msg)
	return nil
}

func (h *hubClient) Close() error { return nil }

func (h *hubClient) eventNames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.events))
	for _, e := range h.events {
		names = append(names, e.Event)
	}
	return names
}
