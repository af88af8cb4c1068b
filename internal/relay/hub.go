// Package relay fans vertex updates out to every other participant of a room.
//
// The relay holds no mesh state. It checks that each inbound frame is a well
// formed vertex update, stamps the sender's participant id on it and forwards
// it. Delivery is at most once: a participant whose outbound queue is full
// misses the frame.
package relay

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"meshsync/internal/vertexsync"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10

	memberQueueSize = 256
	maxFrameBytes   = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type member struct {
	connID      string
	participant string
	send        chan []byte
}

type room struct {
	members map[string]*member
}

type RoomInfo struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*room
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		rooms:  make(map[string]*room),
		logger: logger,
	}
}

// HandleWS joins the caller to ?room= as ?participant= (random when absent)
// and relays frames until the connection drops.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomName := strings.TrimSpace(r.URL.Query().Get("room"))
	if roomName == "" {
		http.Error(w, "room is required", http.StatusBadRequest)
		return
	}
	participant := strings.TrimSpace(r.URL.Query().Get("participant"))
	if participant == "" {
		participant = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	m := &member{
		connID:      uuid.NewString(),
		participant: participant,
		send:        make(chan []byte, memberQueueSize),
	}
	h.join(roomName, m)
	defer h.leave(roomName, m)

	conn.SetReadLimit(maxFrameBytes)
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		h.logger.Printf("relay: set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-m.send:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			cancel()
			<-writerDone
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		frame, ok := h.stamp(raw, participant)
		if !ok {
			continue
		}
		h.broadcast(roomName, m, frame)
	}
}

// stamp validates a frame and rewrites its sender to the authenticated
// participant.
func (h *Hub) stamp(raw []byte, participant string) ([]byte, bool) {
	u, _, err := vertexsync.Decode(raw)
	if err != nil {
		h.logger.Printf("relay: discard frame from %s: %v", participant, err)
		return nil, false
	}
	out, err := vertexsync.Encode(u, participant)
	if err != nil {
		h.logger.Printf("relay: re-encode frame from %s: %v", participant, err)
		return nil, false
	}
	return out, true
}

func (h *Hub) broadcast(roomName string, from *member, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[roomName]
	if !ok {
		return
	}
	for id, m := range rm.members {
		if id == from.connID {
			continue
		}
		select {
		case m.send <- frame:
		default:
			h.logger.Printf("relay: drop frame for %s in room %s: queue full", m.participant, roomName)
		}
	}
}

func (h *Hub) join(roomName string, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[roomName]
	if !ok {
		rm = &room{members: make(map[string]*member)}
		h.rooms[roomName] = rm
	}
	rm.members[m.connID] = m
	h.logger.Printf("relay: %s joined room %s (%d present)", m.participant, roomName, len(rm.members))
}

func (h *Hub) leave(roomName string, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[roomName]
	if !ok {
		return
	}
	delete(rm.members, m.connID)
	if len(rm.members) == 0 {
		delete(h.rooms, roomName)
	}
	h.logger.Printf("relay: %s left room %s", m.participant, roomName)
}

// Rooms lists the open rooms and their participants, sorted by name.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RoomInfo, 0, len(h.rooms))
	for name, rm := range h.rooms {
		info := RoomInfo{Name: name, Participants: make([]string, 0, len(rm.members))}
		for _, m := range rm.members {
			info.Participants = append(info.Participants, m.participant)
		}
		sort.Strings(info.Participants)
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
