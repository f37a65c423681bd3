package floorhub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	failing  bool
	closed   bool
}

func (f *fakeClient) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) events(t *testing.T) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, 0, len(f.messages))
	for _, raw := range f.messages {
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		out = append(out, msg)
	}
	return out
}

func TestBroadcastReachesAllClients(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()
	a, b := &fakeClient{}, &fakeClient{}
	hub.Register(a, "manager")
	hub.Register(b, "waiter")

	hub.BroadcastTableUpdate(models.Table{ID: 3, TableNumber: "T3"})

	for _, c := range []*fakeClient{a, b} {
		events := c.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, EventTableUpdate, events[0].Event)
		data := events[0].Data.(map[string]interface{})
		assert.Equal(t, "T3", data["table_number"])
	}
}

func TestBroadcastDropsFailingClients(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()
	good, bad := &fakeClient{}, &fakeClient{failing: true}
	hub.Register(good, "manager")
	hub.Register(bad, "manager")

	hub.BroadcastTableDelete(5)

	assert.Equal(t, 1, hub.ClientCount())
	assert.True(t, bad.closed)
	assert.Len(t, good.events(t), 1)
}

func TestUnregisterClosesOnce(t *testing.T) {
	hub := NewHub()
	c := &fakeClient{}
	hub.Register(c, "bar")
	hub.Unregister(c)
	hub.Unregister(c)

	assert.True(t, c.closed)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestBroadcastMoveRejected(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()
	c := &fakeClient{}
	hub.Register(c, "manager")

	hub.BroadcastMoveRejected(MoveRejection{TableID: 1, TableNumber: "T1", ConflictTableID: 2, ConflictTableNumber: "T2"})

	events := c.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, EventTableMoveRejected, events[0].Event)
	data := events[0].Data.(map[string]interface{})
	assert.Equal(t, "T2", data["conflict_table_number"])
}
