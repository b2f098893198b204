package testutil

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dom/game-review-catalog/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient is a test client for the live detail channel
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// NewWSClient dials url, sending cookies like a browser would
func NewWSClient(t *testing.T, url string, cookies ...*http.Cookie) *WSClient {
	t.Helper()

	dialer := *gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	header := http.Header{}
	for _, c := range cookies {
		header.Add("Cookie", c.String())
	}

	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads messages from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.t.Logf("failed to decode message: %v", err)
			continue
		}
		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the connection
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.conn.Close()
}

func (c *WSClient) send(msgType websocket.MessageType, payload interface{}) {
	c.t.Helper()

	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		c.t.Fatalf("failed to build message: %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("failed to send message: %v", err)
	}
}

// Navigate asks the server to switch the view to another game
func (c *WSClient) Navigate(gameID string) {
	c.send(websocket.MessageTypeNavigate, websocket.NavigatePayload{GameID: gameID})
}

// Refresh asks the server to reload the current game
func (c *WSClient) Refresh() {
	c.send(websocket.MessageTypeRefresh, nil)
}

// ExpectMessage waits for a message of the given type, failing on timeout
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-c.messages:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s", msgType)
				return nil
			}
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			c.t.Fatalf("timeout waiting for %s", msgType)
			return nil
		}
	}
}

// ExpectDetail waits for the next rendered detail
func (c *WSClient) ExpectDetail(timeout time.Duration) *websocket.DetailPayload {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.MessageTypeDetail, timeout)
	var payload websocket.DetailPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode detail: %v", err)
	}
	return &payload
}

// ExpectError waits for an error message
func (c *WSClient) ExpectError(timeout time.Duration) *websocket.ErrorPayload {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.MessageTypeError, timeout)
	var payload websocket.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode error: %v", err)
	}
	return &payload
}

// ExpectNoMessage verifies nothing arrives within timeout
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case msg, ok := <-c.messages:
		if ok {
			c.t.Fatalf("expected no message, got %s", msg.Type)
		}
	case <-time.After(timeout):
	}
}
