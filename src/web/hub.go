package web

import (
	"context"
	"encoding/json"
	"lifegrid/src/universe"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	clientBacklog  = 8
	maxMessageSize = 512
)

//Hub fans the universe state out to every connected browser, implements universe.Viewer
type Hub struct {
	register   chan *client
	unregister chan *client
	updates    chan universe.Snapshot
	clients    map[*client]bool
	last       []byte //latest encoded state, greets new clients
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		updates:    make(chan universe.Snapshot, 1),
		clients:    map[*client]bool{},
		done:       make(chan struct{}),
	}
}

//Refresh queues the snapshot for broadcasting, an older queued snapshot is replaced
//it never blocks, called from the engine goroutine only
func (h *Hub) Refresh(s universe.Snapshot) {
	for {
		select {
		case h.updates <- s:
			return
		default:
		}
		select {
		case <-h.updates:
		default:
		}
	}
}

//Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			if h.last != nil {
				c.push(h.last)
			}
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
		case s := <-h.updates:
			msg, err := json.Marshal(newState(s))
			if err != nil {
				log.Printf("encode state: %v", err)
				continue
			}
			h.last = msg
			for c := range h.clients {
				c.push(msg)
			}
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

func (h *Hub) add(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

//client is one browser connection
//the hub owns send, the write pump is the only writer to conn
type client struct {
	conn *websocket.Conn
	send chan []byte
	errs chan []byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, clientBacklog),
		errs: make(chan []byte, clientBacklog),
	}
}

//push queues msg dropping the oldest one for a slow client
func (c *client) push(msg []byte) {
	for {
		select {
		case c.send <- msg:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *client) reportError(err error) {
	msg, _ := json.Marshal(ErrorMessage{Type: TypeError, Error: err.Error()})
	select {
	case c.errs <- msg:
	default:
	}
}

//writePump sends queued messages until the hub closes send
func (c *client) writePump() {
	defer c.conn.Close()
	for {
		var msg []byte
		select {
		case m, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			msg = m
		case msg = <-c.errs:
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

//readPump dispatches commands until the connection fails
func (c *client) readPump(u universe.Universe, h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket %v: %v", c.conn.RemoteAddr(), err)
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.reportError(err)
			continue
		}
		if err := Dispatch(u, cmd); err != nil {
			c.reportError(err)
		}
	}
}
