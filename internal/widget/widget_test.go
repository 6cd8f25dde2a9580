package widget

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/kb-assist/internal/chat"
)

type stubAsker struct {
	mu        sync.Mutex
	questions []string
	answer    string
	err       error
}

func (s *stubAsker) Ask(_ context.Context, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, question)
	return s.answer, s.err
}

func setupRouter(wd *Widget) chi.Router {
	r := chi.NewRouter()
	wd.RegisterRoutes(r)
	return r
}

func dial(t *testing.T, r http.Handler) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) serverFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f serverFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestServeIndex(t *testing.T) {
	r := setupRouter(New(func() chat.Asker { return &stubAsker{} }, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ui", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Knowledge Base Assistant") {
		t.Error("expected page title in HTML")
	}
}

func TestStaticAssets(t *testing.T) {
	r := setupRouter(New(func() chat.Asker { return &stubAsker{} }, nil))

	for _, path := range []string{"/ui/static/widget.js", "/ui/static/widget.css"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ui/static/widget.js", nil))
	if strings.Contains(w.Body.String(), "innerHTML") {
		t.Error("widget script must not write answer text as HTML")
	}
}

func TestWebSocketAsk_Bilingual(t *testing.T) {
	asker := &stubAsker{answer: "**English:** Hello\n\n**Indonesian:** Halo"}
	conn := dial(t, setupRouter(New(func() chat.Asker { return asker }, nil)))

	if err := conn.WriteJSON(clientFrame{Type: "ask", Content: "greet me", Language: chat.LanguageIndonesian}); err != nil {
		t.Fatalf("write: %v", err)
	}

	user := readFrame(t, conn)
	if user.Type != "added" || user.Message.Sender != chat.SenderUser || user.Message.Blocks[0].Text != "greet me" {
		t.Fatalf("unexpected user frame: %+v", user)
	}
	loading := readFrame(t, conn)
	if loading.Type != "added" || !loading.Message.Loading {
		t.Fatalf("expected loading frame, got %+v", loading)
	}
	removed := readFrame(t, conn)
	if removed.Type != "removed" || removed.Message.ID != loading.Message.ID {
		t.Fatalf("expected loading removal, got %+v", removed)
	}
	bot := readFrame(t, conn)
	if bot.Type != "added" || bot.Message.Sender != chat.SenderBot {
		t.Fatalf("expected bot frame, got %+v", bot)
	}
	blocks := bot.Message.Blocks
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %+v", blocks)
	}
	if blocks[0].Text != "Hello" || blocks[0].Language != chat.LanguageEnglish {
		t.Errorf("unexpected english block: %+v", blocks[0])
	}
	if blocks[1].Text != "Halo" || blocks[1].Language != chat.LanguageIndonesian {
		t.Errorf("unexpected indonesian block: %+v", blocks[1])
	}

	asker.mu.Lock()
	defer asker.mu.Unlock()
	if len(asker.questions) != 1 || asker.questions[0] != "greet me" {
		t.Errorf("language selection must not alter the question: %v", asker.questions)
	}
}

func TestWebSocketAsk_ServiceUnreachable(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	conn := dial(t, setupRouter(ForService(url, 0, nil)))
	if err := conn.WriteJSON(clientFrame{Type: "ask", Content: "anyone?"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var last serverFrame
	for i := 0; i < 4; i++ {
		last = readFrame(t, conn)
	}
	if last.Type != "added" || last.Message.Blocks[0].Text != chat.NetworkErrorText {
		t.Errorf("expected network fallback, got %+v", last)
	}
}

func TestWebSocketErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame any
		want  string
	}{
		{"empty content", clientFrame{Type: "ask", Content: "   "}, "content is required"},
		{"unknown type", clientFrame{Type: "dance"}, "unknown message type: dance"},
		{"unknown language", clientFrame{Type: "language", Language: "fr"}, "unknown language: fr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &stubAsker{}
			conn := dial(t, setupRouter(New(func() chat.Asker { return asker }, nil)))

			if err := conn.WriteJSON(tt.frame); err != nil {
				t.Fatalf("write: %v", err)
			}
			f := readFrame(t, conn)
			if f.Type != "error" || f.Content != tt.want {
				t.Errorf("got %+v, want error %q", f, tt.want)
			}
			if len(asker.questions) != 0 {
				t.Error("asker should not be called")
			}
		})
	}
}

func TestWebSocketInvalidJSON(t *testing.T) {
	conn := dial(t, setupRouter(New(func() chat.Asker { return &stubAsker{} }, nil)))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := readFrame(t, conn)
	if f.Type != "error" || f.Content != "invalid message format" {
		t.Errorf("unexpected frame: %+v", f)
	}
}

func TestWebSocketLanguageFrameIsSilent(t *testing.T) {
	asker := &stubAsker{answer: "ok"}
	conn := dial(t, setupRouter(New(func() chat.Asker { return asker }, nil)))

	if err := conn.WriteJSON(clientFrame{Type: "language", Language: chat.LanguageIndonesian}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(clientFrame{Type: "ask", Content: "q"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// The first frame after a language switch belongs to the question.
	f := readFrame(t, conn)
	if f.Type != "added" || f.Message.Sender != chat.SenderUser {
		t.Errorf("expected user message frame, got %+v", f)
	}
}
