// Package widget serves the browser chat widget. The page talks to the
// server over a WebSocket; every connection owns one chat session whose
// answers come from the question-answering service.
package widget

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/kb-assist/internal/askclient"
	"github.com/ziadkadry99/kb-assist/internal/chat"
)

//go:embed static
var staticFiles embed.FS

// AskerFactory creates the Asker used by one widget connection.
type AskerFactory func() chat.Asker

// Widget provides the chat page and its WebSocket channel.
type Widget struct {
	newAsker AskerFactory
	logger   *slog.Logger
}

// New creates a Widget. A nil logger uses slog.Default.
func New(newAsker AskerFactory, logger *slog.Logger) *Widget {
	if logger == nil {
		logger = slog.Default()
	}
	return &Widget{newAsker: newAsker, logger: logger}
}

// ForService creates a Widget whose connections call the service at
// serviceURL. A zero timeout leaves requests unbounded.
func ForService(serviceURL string, timeout time.Duration, logger *slog.Logger) *Widget {
	return New(func() chat.Asker {
		return askclient.NewClient(serviceURL, askclient.WithTimeout(timeout))
	}, logger)
}

// RegisterRoutes mounts the widget page, its assets and the chat socket.
func (wd *Widget) RegisterRoutes(r chi.Router) {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Get("/ui", wd.ServeIndex)
	r.Handle("/ui/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(static))))
	r.Get("/ws/chat", wd.handleWebSocket)
}

// ServeIndex serves the embedded chat page.
func (wd *Widget) ServeIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "widget page missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
