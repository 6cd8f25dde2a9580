package qalog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/kb-assist/internal/db"
)

func setupStore(t *testing.T, logger *slog.Logger) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, logger)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	entry := Entry{
		ID:           "qa-1",
		Question:     "How do I shut down the pump?",
		Answer:       "**English:** Press stop.\n\n**Indonesian:** Tekan stop.",
		Model:        "gpt-3.5-turbo",
		InputTokens:  120,
		OutputTokens: 40,
		CostUSD:      0.00012,
	}
	if _, err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "qa-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Question != entry.Question {
		t.Errorf("Question = %q, want %q", got.Question, entry.Question)
	}
	if got.Answer != entry.Answer {
		t.Errorf("Answer = %q, want %q", got.Answer, entry.Answer)
	}
	if got.Model != "gpt-3.5-turbo" || got.InputTokens != 120 || got.OutputTokens != 40 {
		t.Errorf("unexpected usage fields: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestLogGeneratesUUID(t *testing.T) {
	store := setupStore(t, nil)
	stored, err := store.Log(context.Background(), Entry{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected generated ID, got empty string")
	}
}

func TestLogWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store := setupStore(t, logger)

	if _, err := store.Log(context.Background(), Entry{Question: "Where is the manual?", Answer: "In the cabinet."}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !strings.Contains(buf.String(), "Q: Where is the manual? | A: In the cabinet.") {
		t.Errorf("log line missing Q/A pair: %s", buf.String())
	}
}

func TestListNewestFirstWithLimitOffset(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, q := range []string{"first", "second", "third", "fourth"} {
		if _, err := store.Log(ctx, Entry{
			Question:  q,
			Answer:    "a",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 4 || entries[0].Question != "fourth" || entries[3].Question != "first" {
		t.Fatalf("unexpected order: %+v", entries)
	}

	page, err := store.List(ctx, ListFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].Question != "third" || page[1].Question != "second" {
		t.Errorf("unexpected page: %+v", page)
	}

	since := base.Add(2 * time.Minute)
	recent, err := store.List(ctx, ListFilter{Since: &since})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 entries since %v, got %d", since, len(recent))
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	if _, err := store.Log(ctx, Entry{Question: "old", Answer: "a", CreatedAt: old}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if _, err := store.Log(ctx, Entry{Question: "new", Answer: "a"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	n, err := store.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t, nil)
	if _, err := store.GetByID(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing entry")
	}
}

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPList(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()
	for _, q := range []string{"a", "b", "c"} {
		if _, err := store.Log(ctx, Entry{Question: q, Answer: "x"}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/qa-log?limit=2", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got listResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("Total = %d, want 3", got.Total)
	}
	if len(got.Entries) != 2 {
		t.Errorf("got %d entries, want 2", len(got.Entries))
	}
}

func TestHTTPListIgnoresNonPositiveLimit(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()
	for i := 0; i < 55; i++ {
		if _, err := store.Log(ctx, Entry{Question: "q", Answer: "a"}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	for _, query := range []string{"limit=-5", "limit=0", "limit=-1&offset=-3"} {
		t.Run(query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/qa-log?"+query, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			var got listResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Total != 55 {
				t.Errorf("Total = %d, want 55", got.Total)
			}
			if len(got.Entries) != 50 {
				t.Errorf("got %d entries, want the default 50", len(got.Entries))
			}
		})
	}
}

func TestHTTPListEmpty(t *testing.T) {
	r, _ := setupRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/qa-log", nil))

	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("expected empty entries array, got %s", rec.Body.String())
	}
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)
	if _, err := store.Log(context.Background(), Entry{ID: "http-1", Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/qa-log/http-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "http-1" {
		t.Errorf("ID = %q, want %q", got.ID, "http-1")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/qa-log/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
