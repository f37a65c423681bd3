package floorhub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
)

// Event types
const (
	EventTableCreate       = "table_create"
	EventTableUpdate       = "table_update"
	EventTableDelete       = "table_delete"
	EventTableMoveRejected = "table_move_rejected"
	EventSectionCreate     = "section_create"
	EventSectionUpdate     = "section_update"
	EventSectionDelete     = "section_delete"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is the part of a websocket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub holds every open floor plan editor and fans events out to them.
type Hub struct {
	clients map[Client]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Client]string)}
}

func (h *Hub) Register(conn Client, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

func (h *Hub) Unregister(conn Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastTableCreate(table models.Table) {
	h.Broadcast(Message{Event: EventTableCreate, Data: table})
}

func (h *Hub) BroadcastTableUpdate(table models.Table) {
	h.Broadcast(Message{Event: EventTableUpdate, Data: table})
}

func (h *Hub) BroadcastTableDelete(tableID uint) {
	h.Broadcast(Message{Event: EventTableDelete, Data: map[string]interface{}{"id": tableID}})
}

// MoveRejection is sent when a drag would make two tables overlap.
type MoveRejection struct {
	TableID             uint    `json:"table_id"`
	TableNumber         string  `json:"table_number"`
	ConflictTableID     uint    `json:"conflict_table_id"`
	ConflictTableNumber string  `json:"conflict_table_number"`
	X                   float64 `json:"x"`
	Y                   float64 `json:"y"`
	Message             string  `json:"message"`
}

func (h *Hub) BroadcastMoveRejected(rejection MoveRejection) {
	h.Broadcast(Message{Event: EventTableMoveRejected, Data: rejection})
}

func (h *Hub) BroadcastSection(event string, section models.FloorSection) {
	h.Broadcast(Message{Event: event, Data: section})
}

// Broadcast writes msg to every client; clients that fail the write are dropped.
func (h *Hub) Broadcast(msg Message) {
	if h == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))

	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
