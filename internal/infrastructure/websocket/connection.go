package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// WebSocketConnection serializes writes on a gorilla connection and makes
// closing idempotent. Reads must come from a single goroutine.
type WebSocketConnection struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func NewWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	conn.SetReadLimit(maxMessageSize)
	return &WebSocketConnection{conn: conn}
}

func (wsc *WebSocketConnection) Send(message interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()

	if err := wsc.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return wsc.conn.WriteJSON(message)
}

func (wsc *WebSocketConnection) SendText(data []byte) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()

	if err := wsc.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return wsc.conn.WriteMessage(websocket.TextMessage, data)
}

func (wsc *WebSocketConnection) ReadMessage() (int, []byte, error) {
	return wsc.conn.ReadMessage()
}

// Reject closes the connection with the given close code.
func (wsc *WebSocketConnection) Reject(code int, reason string) error {
	return wsc.closeWith(code, reason)
}

func (wsc *WebSocketConnection) Close() error {
	return wsc.closeWith(websocket.CloseNormalClosure, "")
}

func (wsc *WebSocketConnection) closeWith(code int, reason string) error {
	var err error
	wsc.closeOnce.Do(func() {
		// WriteControl may run concurrently with a pending Send.
		_ = wsc.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		err = wsc.conn.Close()
	})
	return err
}
