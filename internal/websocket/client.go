package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dom/game-review-catalog/internal/view"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// RenderFunc turns a loaded detail page into the HTML pushed to the browser.
type RenderFunc func(*view.Detail) ([]byte, error)

// Client is one browser showing a game page. It owns a mounted DetailView
// whose reloads are pushed down the connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	view   *view.DetailView
	render RenderFunc
	log    logrus.FieldLogger

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, mount func(render func(*view.Detail)) *view.DetailView, render RenderFunc, log logrus.FieldLogger) *Client {
	c := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		render: render,
		log:    log,
	}
	c.view = mount(c.pushDetail)
	return c
}

// Start mounts the view on gameID and runs the pumps until the browser
// goes away. ctx carries the viewer's session.
func (c *Client) Start(ctx context.Context, gameID uuid.UUID) {
	c.hub.Register(c)
	c.view.Mount(ctx, gameID)

	go c.WritePump()
	c.ReadPump()
}

func (c *Client) ReadPump() {
	defer func() {
		c.view.Unmount()
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket read failed")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("INVALID_MESSAGE", "Message is not valid JSON")
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
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

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeNavigate:
		var payload NavigatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid navigate payload")
			return
		}
		gameID, err := uuid.Parse(payload.GameID)
		if err != nil {
			c.sendError("INVALID_GAME", "Invalid game id")
			return
		}
		c.view.Navigate(gameID)

	case MessageTypeRefresh:
		c.view.Refresh()

	default:
		c.sendError("UNKNOWN_TYPE", "Unknown message type")
	}
}

// pushDetail is the view's render callback.
func (c *Client) pushDetail(d *view.Detail) {
	payload := DetailPayload{GameID: d.GameID.String(), Error: d.Err}
	if d.Game != nil {
		payload.Title = d.Game.Title
	}

	html, err := c.render(d)
	if err != nil {
		c.log.WithError(err).WithField("game_id", d.GameID).Error("render detail fragment")
		c.sendError("RENDER_FAILED", "Could not render the page")
		return
	}
	payload.HTML = string(html)

	msg, err := NewMessage(MessageTypeDetail, payload)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal detail payload")
		return
	}
	c.Send(msg)
}

func (c *Client) sendError(code, message string) {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
	c.Send(msg)
}

// Send queues msg. A slow browser that lets the queue fill up misses the
// message; the next reload carries the full page again.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal message")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send queue full, dropping message")
	}
}

// Close ends the write pump. It is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
