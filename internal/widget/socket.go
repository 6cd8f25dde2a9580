package widget

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/kb-assist/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is the incoming WebSocket message format.
type clientFrame struct {
	Type     string        `json:"type"` // "ask" or "language"
	Content  string        `json:"content,omitempty"`
	Language chat.Language `json:"language,omitempty"`
}

// serverFrame is the outgoing WebSocket message format.
type serverFrame struct {
	Type    string        `json:"type"` // "added", "removed" or "error"
	Message *chat.Message `json:"message,omitempty"`
	Content string        `json:"content,omitempty"`
}

// conn serializes writes; gorilla allows one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(f serverFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(f)
}

func (wd *Widget) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		wd.logger.Warn("widget: websocket upgrade", "error", err)
		return
	}
	defer ws.Close()
	c := &conn{ws: ws}

	asker := wd.newAsker()
	if closer, ok := asker.(io.Closer); ok {
		defer closer.Close()
	}

	session := chat.NewSession(asker, wd.logger)
	session.Transcript().Subscribe(func(ev chat.Event) {
		msg := ev.Message
		if err := c.send(serverFrame{Type: string(ev.Kind), Message: &msg}); err != nil {
			wd.logger.Debug("widget: websocket write", "error", err)
		}
	})

	// In-flight questions outlive the request context's middleware
	// deadlines and are cancelled when the socket closes.
	var inflight sync.WaitGroup
	defer inflight.Wait()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wd.logger.Warn("widget: websocket read", "error", err)
			}
			return
		}

		var f clientFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			wd.sendError(c, "invalid message format")
			continue
		}

		switch f.Type {
		case "ask":
			if strings.TrimSpace(f.Content) == "" {
				wd.sendError(c, "content is required")
				continue
			}
			session.SetLanguage(f.Language)
			inflight.Add(1)
			go func(question string) {
				defer inflight.Done()
				session.Submit(ctx, question)
			}(f.Content)
		case "language":
			if !f.Language.Valid() {
				wd.sendError(c, "unknown language: "+string(f.Language))
				continue
			}
			session.SetLanguage(f.Language)
		default:
			wd.sendError(c, "unknown message type: "+f.Type)
		}
	}
}

func (wd *Widget) sendError(c *conn, message string) {
	if err := c.send(serverFrame{Type: "error", Content: message}); err != nil {
		wd.logger.Debug("widget: websocket write error", "error", err)
	}
}
