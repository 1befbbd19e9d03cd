package spectator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/gorilla/websocket"
)

const MessageStateUpdated = "STATE_UPDATED"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type Message struct {
	Type         string        `json:"type"`
	TournamentID string        `json:"tournamentId"`
	State        bracket.State `json:"state"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

type subscription struct {
	client   *Client
	snapshot []byte
}

// Hub fans committed tournament states out to read-only spectators. Each room keeps the
// last published state so a late subscriber starts from the newest committed snapshot.
type Hub struct {
	register   chan subscription
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	latest map[string][]byte
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan subscription),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]bool),
		latest:     make(map[string][]byte),
	}
}

// Run serves registrations until ctx is cancelled, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			room := sub.client.room
			if _, ok := h.rooms[room]; !ok {
				h.rooms[room] = make(map[*Client]bool)
			}
			h.rooms[room][sub.client] = true
			initial := sub.snapshot
			if latest, ok := h.latest[room]; ok {
				initial = latest
			}
			if initial != nil {
				sub.client.send <- initial
			}
			slog.Debug("spectator joined", "tournament_id", room, "spectators", len(h.rooms[room]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove expects h.mu to be held
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
	slog.Debug("spectator left", "tournament_id", client.room, "spectators", len(clients))
}

func encode(tournamentID string, state bracket.State) ([]byte, error) {
	return json.Marshal(Message{Type: MessageStateUpdated, TournamentID: tournamentID, State: state})
}

// Publish replaces the room's latest state and pushes it to every spectator. Slow
// spectators whose buffer is full skip this update and catch up with the next one.
func (h *Hub) Publish(tournamentID string, state bracket.State) {
	message, err := encode(tournamentID, state)
	if err != nil {
		slog.Error("failed to encode spectator message", "tournament_id", tournamentID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[tournamentID] = message
	for client := range h.rooms[tournamentID] {
		select {
		case client.send <- message:
		default:
			slog.Warn("spectator send buffer full, skipping update", "tournament_id", tournamentID)
		}
	}
}

// Forget drops the cached state of a deleted tournament
func (h *Hub) Forget(tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.latest, tournamentID)
}

func (h *Hub) Spectators(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tournamentID])
}

// ServeWS upgrades the request and subscribes it to the tournament's room. snapshot is the
// stored state, sent first unless a newer one has been published meanwhile.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tournamentID string, snapshot bracket.State) {
	initial, err := encode(tournamentID, snapshot)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tournament_id", tournamentID, "error", err)
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), room: tournamentID}
	select {
	case h.register <- subscription{client: client, snapshot: initial}:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the connection going away, spectators never send state
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("spectator connection closed unexpectedly", "tournament_id", c.room, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("spectator write failed", "tournament_id", c.room, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
