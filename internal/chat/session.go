// Package chat models the chat window: a transcript of user and bot
// messages, a loading indicator while a question is in flight, and the
// bilingual rendering of answers.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ziadkadry99/kb-assist/internal/askclient"
	"github.com/ziadkadry99/kb-assist/internal/bilingual"
)

// Asker sends a question to the question-answering service.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Session wires user input to the service and the transcript.
type Session struct {
	asker      Asker
	transcript *Transcript
	logger     *slog.Logger

	mu       sync.RWMutex
	language Language
}

// NewSession creates a session with an empty transcript and English
// selected.
func NewSession(asker Asker, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		asker:      asker,
		transcript: NewTranscript(),
		logger:     logger,
		language:   LanguageEnglish,
	}
}

// Transcript returns the session's transcript.
func (s *Session) Transcript() *Transcript { return s.transcript }

// SetLanguage records the selector state. It does not change what is sent
// to the service.
func (s *Session) SetLanguage(l Language) {
	if !l.Valid() {
		return
	}
	s.mu.Lock()
	s.language = l
	s.mu.Unlock()
}

// Language returns the selector state.
func (s *Session) Language() Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// Submit handles one question: it shows the question and a loading
// indicator, calls the service, removes the indicator and appends exactly
// one bot message. Service and network failures become fixed apology
// messages; they are logged, not returned. Blank questions are ignored.
func (s *Session) Submit(ctx context.Context, question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}

	s.transcript.Append(UserMessage(question))
	loading := s.transcript.Append(LoadingMessage())

	answer, err := s.asker.Ask(ctx, question)
	s.transcript.Remove(loading.ID)

	if err != nil {
		s.transcript.Append(BotText(s.fallbackFor(err)))
		return
	}
	s.transcript.Append(BotAnswer(answer))
}

func (s *Session) fallbackFor(err error) string {
	switch {
	case askclient.IsServiceError(err):
		s.logger.Warn("question-answering service returned an error", "error", err)
		return ServiceErrorText
	case askclient.IsNetworkError(err):
		s.logger.Error("could not reach question-answering service", "error", err)
		return NetworkErrorText
	default:
		s.logger.Error("ask failed", "error", err)
		return NetworkErrorText
	}
}

// UserMessage builds the transcript entry for a typed question.
func UserMessage(text string) Message {
	return Message{
		Sender: SenderUser,
		Name:   UserName,
		Blocks: []Block{{Text: text}},
	}
}

// LoadingMessage builds the placeholder shown while waiting for an answer.
func LoadingMessage() Message {
	return Message{
		Sender:  SenderBot,
		Name:    BotName,
		Blocks:  []Block{{Text: LoadingText}},
		Loading: true,
	}
}

// BotText builds a single-block bot message.
func BotText(text string) Message {
	return Message{
		Sender: SenderBot,
		Name:   BotName,
		Blocks: []Block{{Text: text}},
	}
}

// BotAnswer segments answer and builds a bot message with one block, or
// two when an Indonesian portion was detected.
func BotAnswer(answer string) Message {
	seg := bilingual.Segment(answer)
	if !seg.IsBilingual() {
		return BotText(seg.Primary)
	}
	return Message{
		Sender: SenderBot,
		Name:   BotName,
		Blocks: []Block{
			{Text: seg.Primary, Language: LanguageEnglish},
			{Text: seg.SecondaryText(), Language: LanguageIndonesian},
		},
	}
}
