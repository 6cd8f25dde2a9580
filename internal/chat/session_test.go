package chat

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"

	"github.com/ziadkadry99/kb-assist/internal/askclient"
)

// fakeAsker returns a canned answer or error and records questions.
type fakeAsker struct {
	mu        sync.Mutex
	questions []string
	answer    string
	err       error
}

func (f *fakeAsker) Ask(_ context.Context, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, question)
	return f.answer, f.err
}

// recorder captures transcript events in order.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func botMessages(msgs []Message) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Sender == SenderBot {
			out = append(out, m)
		}
	}
	return out
}

func TestSubmit_BilingualAnswer(t *testing.T) {
	asker := &fakeAsker{answer: "**English:** Hello\n\n**Indonesian:** Halo"}
	s := NewSession(asker, nil)

	s.Submit(context.Background(), "  greet me  ")

	if len(asker.questions) != 1 || asker.questions[0] != "greet me" {
		t.Fatalf("expected trimmed question to be sent once, got %v", asker.questions)
	}

	msgs := s.Transcript().Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != SenderUser || msgs[0].Blocks[0].Text != "greet me" {
		t.Errorf("unexpected user message: %+v", msgs[0])
	}
	bot := msgs[1]
	if bot.Loading {
		t.Error("loading message left in transcript")
	}
	if len(bot.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(bot.Blocks))
	}
	if bot.Blocks[0].Text != "Hello" || bot.Blocks[0].Language != LanguageEnglish {
		t.Errorf("unexpected english block: %+v", bot.Blocks[0])
	}
	if bot.Blocks[1].Text != "Halo" || bot.Blocks[1].Language != LanguageIndonesian {
		t.Errorf("unexpected indonesian block: %+v", bot.Blocks[1])
	}
}

func TestSubmit_SingleLanguageAnswer(t *testing.T) {
	asker := &fakeAsker{answer: "Press the red button."}
	s := NewSession(asker, nil)

	s.Submit(context.Background(), "How do I stop?")

	bots := botMessages(s.Transcript().Messages())
	if len(bots) != 1 {
		t.Fatalf("expected 1 bot message, got %d", len(bots))
	}
	if len(bots[0].Blocks) != 1 || bots[0].Blocks[0].Text != "Press the red button." {
		t.Errorf("unexpected blocks: %+v", bots[0].Blocks)
	}
	if bots[0].Blocks[0].Language != "" {
		t.Errorf("single block should carry no language, got %q", bots[0].Blocks[0].Language)
	}
}

func TestSubmit_BlankQuestionIgnored(t *testing.T) {
	asker := &fakeAsker{answer: "unused"}
	s := NewSession(asker, nil)

	s.Submit(context.Background(), "   ")

	if s.Transcript().Len() != 0 {
		t.Errorf("expected empty transcript, got %d messages", s.Transcript().Len())
	}
	if len(asker.questions) != 0 {
		t.Errorf("expected no service call, got %d", len(asker.questions))
	}
}

func TestSubmit_ErrorFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"service error", &askclient.ServiceError{StatusCode: 500}, ServiceErrorText},
		{"network error", &askclient.NetworkError{URL: "x", Err: errors.New("refused")}, NetworkErrorText},
		{"unclassified error", errors.New("weird"), NetworkErrorText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(&fakeAsker{err: tt.err}, nil)
			s.Submit(context.Background(), "q")

			bots := botMessages(s.Transcript().Messages())
			if len(bots) != 1 {
				t.Fatalf("expected exactly 1 bot message, got %d", len(bots))
			}
			if got := bots[0].Blocks[0].Text; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubmit_StaysUsableAfterError(t *testing.T) {
	asker := &fakeAsker{err: &askclient.ServiceError{StatusCode: 502}}
	s := NewSession(asker, nil)
	s.Submit(context.Background(), "first")

	asker.err = nil
	asker.answer = "second answer"
	s.Submit(context.Background(), "second")

	bots := botMessages(s.Transcript().Messages())
	if len(bots) != 2 {
		t.Fatalf("expected 2 bot messages, got %d", len(bots))
	}
	if bots[1].Blocks[0].Text != "second answer" {
		t.Errorf("unexpected second answer: %+v", bots[1])
	}
}

func TestSubmit_ServiceUnreachable_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := askclient.NewClient(url)
	defer client.Close()

	s := NewSession(client, nil)
	rec := &recorder{}
	s.Transcript().Subscribe(rec.observe)

	s.Submit(context.Background(), "is anyone there?")

	bots := botMessages(s.Transcript().Messages())
	if len(bots) != 1 {
		t.Fatalf("expected exactly 1 bot message, got %d", len(bots))
	}
	if got := bots[0].Blocks[0].Text; got != NetworkErrorText {
		t.Errorf("got %q, want %q", got, NetworkErrorText)
	}

	// user added, loading added, loading removed, bot added.
	if len(rec.events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(rec.events), rec.events)
	}
	if rec.events[1].Kind != EventAdded || !rec.events[1].Message.Loading {
		t.Errorf("event 1 should add the loading message: %+v", rec.events[1])
	}
	if rec.events[2].Kind != EventRemoved || rec.events[2].Message.ID != rec.events[1].Message.ID {
		t.Errorf("event 2 should remove the loading message: %+v", rec.events[2])
	}
	if rec.events[3].Kind != EventAdded || rec.events[3].Message.Blocks[0].Text != NetworkErrorText {
		t.Errorf("event 3 should add the fallback message: %+v", rec.events[3])
	}
}

func TestSubmit_ServiceReturns500_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Error processing question"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := askclient.NewClient(srv.URL)
	defer client.Close()

	s := NewSession(client, nil)
	s.Submit(context.Background(), "trigger failure")

	bots := botMessages(s.Transcript().Messages())
	if len(bots) != 1 {
		t.Fatalf("expected exactly 1 bot message, got %d", len(bots))
	}
	if got := bots[0].Blocks[0].Text; got != ServiceErrorText {
		t.Errorf("got %q, want %q", got, ServiceErrorText)
	}
}

func TestSubmit_ConcurrentQuestionsAreIndependent(t *testing.T) {
	asker := &fakeAsker{answer: "ok"}
	s := NewSession(asker, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit(context.Background(), "same question")
		}()
	}
	wg.Wait()

	msgs := s.Transcript().Messages()
	if len(msgs) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Loading {
			t.Error("loading message left in transcript")
		}
	}
}

func TestLanguageSelector(t *testing.T) {
	asker := &fakeAsker{answer: "ok"}
	s := NewSession(asker, nil)
	if s.Language() != LanguageEnglish {
		t.Errorf("expected default language en, got %q", s.Language())
	}

	s.SetLanguage(LanguageIndonesian)
	if s.Language() != LanguageIndonesian {
		t.Errorf("expected id, got %q", s.Language())
	}

	s.SetLanguage("fr")
	if s.Language() != LanguageIndonesian {
		t.Errorf("invalid language should be ignored, got %q", s.Language())
	}

	s.Submit(context.Background(), "pertanyaan")
	if asker.questions[0] != "pertanyaan" {
		t.Errorf("question altered by language selection: %q", asker.questions[0])
	}
}

func TestTranscript_Remove(t *testing.T) {
	tr := NewTranscript()
	a := tr.Append(BotText("a"))
	tr.Append(BotText("b"))

	if !tr.Remove(a.ID) {
		t.Fatal("expected removal")
	}
	if tr.Remove(a.ID) {
		t.Error("second removal should report false")
	}
	msgs := tr.Messages()
	if len(msgs) != 1 || msgs[0].Blocks[0].Text != "b" {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestTerminalRenderer(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf)
	s := NewSession(&fakeAsker{answer: "This is English.\n\nUntuk bahasa Indonesia, ini dia."}, nil)
	s.Transcript().Subscribe(r.Observe)

	s.Submit(context.Background(), "question")

	out := buf.String()
	if strings.Contains(out, "question\n") {
		t.Errorf("user message should not be echoed by default: %q", out)
	}
	for _, want := range []string{LoadingText, BotName, "[English]", "This is English.", "[Bahasa Indonesia]", "Untuk bahasa Indonesia, ini dia."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if strings.Index(out, "This is English.") > strings.Index(out, "Untuk bahasa") {
		t.Error("english block should be printed before the indonesian block")
	}
}
